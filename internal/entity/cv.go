package entity

import (
	"bytes"
	"encoding/json"
)

// CandidateRecord is the normalized shape we want from the LLM.
type CandidateRecord struct {
	ContactInformation ContactInformation `json:"contactInformation"`
	Education          []Education        `json:"education"`
	WorkExperience     []WorkExperience   `json:"workExperience"`
	Skills             []string           `json:"skills"`
	SpokenLanguages    []string           `json:"spokenLanguages"`
}

type ContactInformation struct {
	Name    FlexString `json:"name"`
	Phone   FlexString `json:"phone"`
	Email   FlexString `json:"email"`
	City    FlexString `json:"city"`
	Country FlexString `json:"country"`
}

type Education struct {
	Degree     FlexString `json:"degree"`
	University FlexString `json:"university"`
	Faculty    FlexString `json:"faculty"`
	StartYear  FlexString `json:"startYear"`
	EndYear    FlexString `json:"endYear"`
	Grade      FlexString `json:"grade"`
}

type WorkExperience struct {
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	Company     FlexString `json:"company"`
	StartDate   FlexString `json:"startDate"` // YYYY-MM-DD | YYYY-MM | YYYY | present | ""
	EndDate     FlexString `json:"endDate"`
}

// ParsedCV is a CandidateRecord whose skills were resolved against the catalog.
// It is what synchronous callers receive.
type ParsedCV struct {
	ContactInformation ContactInformation `json:"contactInformation"`
	Education          []Education        `json:"education"`
	WorkExperience     []WorkExperience   `json:"workExperience"`
	Skills             []Skill            `json:"skills"`
	SpokenLanguages    []string           `json:"spokenLanguages"`
}

// Resolve swaps the raw skill names for catalog rows.
func (r *CandidateRecord) Resolve(skills []Skill) *ParsedCV {
	if skills == nil {
		skills = []Skill{}
	}
	return &ParsedCV{
		ContactInformation: r.ContactInformation,
		Education:          nonNil(r.Education),
		WorkExperience:     nonNil(r.WorkExperience),
		Skills:             skills,
		SpokenLanguages:    nonNil(r.SpokenLanguages),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// UnmarshalJSON also accepts the spaced key variants older prompts produced
// ("spoken languages").
func (r *CandidateRecord) UnmarshalJSON(b []byte) error {
	type plain CandidateRecord
	var aux struct {
		plain
		SpokenLanguagesAlt []string `json:"spoken languages"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = CandidateRecord(aux.plain)
	if len(r.SpokenLanguages) == 0 && len(aux.SpokenLanguagesAlt) > 0 {
		r.SpokenLanguages = aux.SpokenLanguagesAlt
	}
	return nil
}

// UnmarshalJSON accepts "start Year"/"End Year" as aliases.
func (e *Education) UnmarshalJSON(b []byte) error {
	type plain Education
	var aux struct {
		plain
		StartYearAlt FlexString `json:"start Year"`
		EndYearAlt   FlexString `json:"End Year"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Education(aux.plain)
	if e.StartYear == "" {
		e.StartYear = aux.StartYearAlt
	}
	if e.EndYear == "" {
		e.EndYear = aux.EndYearAlt
	}
	return nil
}

// UnmarshalJSON accepts "start date"/"end date" as aliases.
func (w *WorkExperience) UnmarshalJSON(b []byte) error {
	type plain WorkExperience
	var aux struct {
		plain
		StartDateAlt FlexString `json:"start date"`
		EndDateAlt   FlexString `json:"end date"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*w = WorkExperience(aux.plain)
	if w.StartDate == "" {
		w.StartDate = aux.StartDateAlt
	}
	if w.EndDate == "" {
		w.EndDate = aux.EndDateAlt
	}
	return nil
}

// FlexString is a string field that tolerates the model emitting numbers,
// booleans or null where a string was asked for (e.g. "grade": 3.48).
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*s = FlexString(b)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*s = FlexString(n.String())
		return nil
	}
}

func (s FlexString) String() string { return string(s) }
