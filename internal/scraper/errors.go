package scraper

import (
	"fmt"
	"strings"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

// StructuralError means a required element was not on the page. The
// markup changed and the locators need updating.
type StructuralError struct {
	Field string
	Tried []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("required element %q not found (tried %s)", e.Field, strings.Join(e.Tried, ", "))
}

// DetailError attributes a failure to one listing and the field being read.
type DetailError struct {
	Platform   project.Platform
	ExternalID string
	Field      string
	Err        error
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Platform, e.ExternalID, e.Field, e.Err)
}

func (e *DetailError) Unwrap() error {
	return e.Err
}
