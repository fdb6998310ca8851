package enums

import "fmt"

// MediaStatus is the processing state of an uploaded variant image. Only a
// ready image can be served to shoppers.
type MediaStatus string

const (
	MediaStatusPending MediaStatus = "pending"
	MediaStatusReady   MediaStatus = "ready"
	MediaStatusFailed  MediaStatus = "failed"
)

func (m MediaStatus) String() string { return string(m) }

// IsValid reports whether the status is known.
func (m MediaStatus) IsValid() bool {
	switch m {
	case MediaStatusPending, MediaStatusReady, MediaStatusFailed:
		return true
	}
	return false
}

// Servable reports whether the image may back a purchasable variant.
func (m MediaStatus) Servable() bool { return m == MediaStatusReady }

// ParseMediaStatus converts raw input into a MediaStatus.
func ParseMediaStatus(value string) (MediaStatus, error) {
	if m := MediaStatus(value); m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("invalid media status %q", value)
}
