// Package instance names the running process for locks and logs.
package instance

import "os"

const envWorkerID = "THREADLINE_WORKER_ID"

// ID returns THREADLINE_WORKER_ID, then the hostname, then a fixed fallback.
func ID() string {
	if id := os.Getenv(envWorkerID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
