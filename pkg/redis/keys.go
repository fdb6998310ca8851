package redis

import "strings"

// Every key lives under one namespace so threadline can share a redis with
// other services.
const (
	keyNamespace      = "tl"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	lockPrefix        = "lock"
)

// IdempotencyKey names the replay record for one client key within scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return namespacedKey(idempotencyPrefix, scope, id)
}

// RateLimitKey names the fixed-window counter for scope.
func (c *Client) RateLimitKey(scope string) string {
	return namespacedKey(rateLimitPrefix, scope)
}

// LockKey names a worker lock.
func (c *Client) LockKey(name string) string {
	return namespacedKey(lockPrefix, name)
}

// namespacedKey joins the non-blank parts with ':' under keyNamespace.
func namespacedKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
