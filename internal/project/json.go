package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type hiddenJSON struct {
	Platform   Platform `json:"platform"`
	ExternalID string   `json:"externalId"`
	Hidden     bool     `json:"hidden"`
}

type visibleJSON struct {
	Platform        Platform   `json:"platform"`
	ExternalID      string     `json:"externalId"`
	Hidden          bool       `json:"hidden"`
	WageType        WageType   `json:"wageType"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Description     string     `json:"description"`
	PublicationDate time.Time  `json:"publicationDate"`
	RecruitingLimit *time.Time `json:"recruitingLimit"`
	IsRecruiting    bool       `json:"isRecruiting"`
}

type fixedJSON struct {
	visibleJSON
	Budget       *Range[Yen] `json:"budget,omitempty"`
	DeliveryDate *time.Time  `json:"deliveryDate,omitempty"`
}

type timeJSON struct {
	visibleJSON
	HourlyBudget *Range[Yen]   `json:"hourlyBudget,omitempty"`
	WorkingTime  *WorkingTime  `json:"workingTime,omitempty"`
	Period       *Range[Weeks] `json:"period,omitempty"`
}

// marshal encodes without HTML escaping; descriptions are raw HTML.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func inJST(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(JST)
	return &v
}

func (h Hidden) MarshalJSON() ([]byte, error) {
	return marshal(hiddenJSON{Platform: h.Platform, ExternalID: h.ExternalID, Hidden: true})
}

func (f FixedWage) MarshalJSON() ([]byte, error) {
	return marshal(fixedJSON{
		visibleJSON:  toVisibleJSON(f.Visible, WageFixed),
		Budget:       f.Budget,
		DeliveryDate: inJST(f.DeliveryDate),
	})
}

func (t TimeWage) MarshalJSON() ([]byte, error) {
	return marshal(timeJSON{
		visibleJSON:  toVisibleJSON(t.Visible, WageTime),
		HourlyBudget: t.HourlyBudget,
		WorkingTime:  t.WorkingTime,
		Period:       t.Period,
	})
}

func toVisibleJSON(v Visible, wt WageType) visibleJSON {
	return visibleJSON{
		Platform:        v.Platform,
		ExternalID:      v.ExternalID,
		WageType:        wt,
		Title:           v.Title,
		Category:        v.Category,
		Description:     v.Description,
		PublicationDate: v.PublicationDate.In(JST),
		RecruitingLimit: inJST(v.RecruitingLimit),
		IsRecruiting:    v.IsRecruiting,
	}
}

func fromVisibleJSON(w visibleJSON) Visible {
	return Visible{
		Platform:        w.Platform,
		ExternalID:      w.ExternalID,
		Title:           w.Title,
		Category:        w.Category,
		Description:     w.Description,
		PublicationDate: w.PublicationDate.In(JST),
		RecruitingLimit: inJST(w.RecruitingLimit),
		IsRecruiting:    w.IsRecruiting,
	}
}

// Unmarshal decodes one record, choosing the variant from the hidden and
// wageType discriminators.
func Unmarshal(data []byte) (Project, error) {
	var head struct {
		Hidden   *bool    `json:"hidden"`
		WageType WageType `json:"wageType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if head.Hidden == nil {
		return nil, errors.New("decode project: missing hidden discriminator")
	}

	if *head.Hidden {
		var w hiddenJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode hidden project: %w", err)
		}
		return &Hidden{Platform: w.Platform, ExternalID: w.ExternalID}, nil
	}

	switch head.WageType {
	case WageFixed:
		var w fixedJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode fixed wage project: %w", err)
		}
		if !w.Budget.Valid() {
			return nil, fmt.Errorf("decode fixed wage project: budget: %w", ErrInvertedRange)
		}
		return &FixedWage{
			Visible:      fromVisibleJSON(w.visibleJSON),
			Budget:       w.Budget,
			DeliveryDate: inJST(w.DeliveryDate),
		}, nil
	case WageTime:
		var w timeJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode time wage project: %w", err)
		}
		if !w.HourlyBudget.Valid() {
			return nil, fmt.Errorf("decode time wage project: hourly budget: %w", ErrInvertedRange)
		}
		if !w.Period.Valid() {
			return nil, fmt.Errorf("decode time wage project: period: %w", ErrInvertedRange)
		}
		return &TimeWage{
			Visible:      fromVisibleJSON(w.visibleJSON),
			HourlyBudget: w.HourlyBudget,
			WorkingTime:  w.WorkingTime,
			Period:       w.Period,
		}, nil
	default:
		return nil, fmt.Errorf("decode project: unknown wage type %q", head.WageType)
	}
}

// UnmarshalBatch decodes a JSON array of records as written by the file sink.
func UnmarshalBatch(data []byte) ([]Project, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	out := make([]Project, 0, len(raws))
	for i, raw := range raws {
		p, err := Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
