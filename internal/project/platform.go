package project

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies a marketplace.
type Platform string

const (
	Coconala   Platform = "coconala"
	CrowdWorks Platform = "crowdworks"
	Lancers    Platform = "lancers"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Platforms returns every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{Coconala, CrowdWorks, Lancers}
}

func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Platforms() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, raw)
}

func (p Platform) String() string {
	return string(p)
}

// Key is the idempotency key of a listing across re-crawls.
type Key struct {
	Platform   Platform `json:"platform"`
	ExternalID string   `json:"externalId"`
}

func (k Key) String() string {
	return string(k.Platform) + ":" + k.ExternalID
}
