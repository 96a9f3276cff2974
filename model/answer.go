package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Implications values returned by the model.
const (
	ImplicationsRequired     = "Required"
	ImplicationsNotRequired  = "Not required"
	ImplicationsInsufficient = "Insufficient"
)

// Confidence is a 0-10 certainty score. Generative backends return it
// either as a JSON number or as a numeric string, so it unmarshals both.
type Confidence float64

func (c *Confidence) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*c = Confidence(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = Confidence(math.NaN())
		return nil
	}
	*c = Confidence(v)
	return nil
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(c))
}

// LawFinding is one identified law with the model's reasoning.
type LawFinding struct {
	Law            string     `json:"law"`
	Reasoning      string     `json:"reasoning"`
	Highlight      string     `json:"highlight,omitempty"`
	SupportingText string     `json:"supporting_text,omitempty"`
	Confidence     Confidence `json:"confidence"`
}

// StructuredAnswer is the model's judgment for one query.
type StructuredAnswer struct {
	Implications string       `json:"implications"`
	Results      []LawFinding `json:"results"`
}

// Valid reports whether the answer passes the structured-output gate:
// implications must be a non-empty string and at least one result must
// carry substantive reasoning and a parseable non-negative confidence.
func (a *StructuredAnswer) Valid() bool {
	if a == nil || strings.TrimSpace(a.Implications) == "" {
		return false
	}
	if len(a.Results) == 0 {
		return false
	}
	for _, r := range a.Results {
		if len(strings.TrimSpace(r.Reasoning)) < 5 {
			continue
		}
		c := float64(r.Confidence)
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			continue
		}
		return true
	}
	return false
}
