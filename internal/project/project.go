// Package project defines the normalized listing record shared by every
// crawler, sink and the API.
package project

import (
	"time"
)

// Project is one of *Hidden, *FixedWage or *TimeWage.
type Project interface {
	Key() Key
	IsHidden() bool
	isProject()
}

// Hidden is a listing whose detail page withholds its content.
type Hidden struct {
	Platform   Platform
	ExternalID string
}

func (h *Hidden) Key() Key       { return Key{Platform: h.Platform, ExternalID: h.ExternalID} }
func (h *Hidden) IsHidden() bool { return true }
func (h *Hidden) isProject()     {}

// Visible holds the fields common to both wage types.
type Visible struct {
	Platform        Platform
	ExternalID      string
	Title           string
	Category        string
	Description     string // raw HTML fragment
	PublicationDate time.Time
	RecruitingLimit *time.Time
	IsRecruiting    bool
}

func (v *Visible) Key() Key       { return Key{Platform: v.Platform, ExternalID: v.ExternalID} }
func (v *Visible) IsHidden() bool { return false }

type FixedWage struct {
	Visible
	Budget       *Range[Yen]
	DeliveryDate *time.Time
}

func (f *FixedWage) isProject()         {}
func (f *FixedWage) WageType() WageType { return WageFixed }

type TimeWage struct {
	Visible
	HourlyBudget *Range[Yen]
	WorkingTime  *WorkingTime
	Period       *Range[Weeks]
}

func (t *TimeWage) isProject()         {}
func (t *TimeWage) WageType() WageType { return WageTime }

// VisibleOf returns the common visible fields, or nil for hidden listings.
func VisibleOf(p Project) *Visible {
	switch v := p.(type) {
	case *FixedWage:
		return &v.Visible
	case *TimeWage:
		return &v.Visible
	default:
		return nil
	}
}

// JST is the fixed UTC+9 zone every listing date is anchored to.
var JST = time.FixedZone("JST", 9*60*60)
