package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

// reFence matches the first fenced block, optionally tagged json.
var reFence = regexp.MustCompile("(?s)```\\s*(?i:json)?\\s*(.*?)```")

// MalformedResponseError carries the raw model output so prompt drift can be
// diagnosed from logs.
type MalformedResponseError struct {
	Raw     string
	Payload string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%v: %v", common.ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{common.ErrMalformedResponse, e.Err}
}

// ExtractPayload returns the trimmed inner content of the first fenced block,
// or raw unchanged when there is no fence.
func ExtractPayload(raw string) string {
	if m := reFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// ParseRecord isolates the JSON payload and decodes it. The result is not yet
// normalized.
func ParseRecord(raw string) (*entity.CandidateRecord, error) {
	payload := ExtractPayload(raw)
	var rec entity.CandidateRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Payload: payload, Err: err}
	}
	return &rec, nil
}

// Normalize applies the field rules the prompt asks for but cannot enforce:
// skills are trimmed and lowercased, empty and spoken-language entries dropped,
// and all whitespace is removed from the phone number. Safe to apply twice.
func Normalize(rec *entity.CandidateRecord) {
	if rec == nil {
		return
	}

	languages := make(map[string]struct{}, len(rec.SpokenLanguages))
	for _, l := range rec.SpokenLanguages {
		languages[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	skills := make([]string, 0, len(rec.Skills))
	for _, s := range rec.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, isLanguage := languages[s]; isLanguage {
			continue
		}
		skills = append(skills, s)
	}
	rec.Skills = skills

	rec.ContactInformation.Phone = entity.FlexString(stripSpace(rec.ContactInformation.Phone.String()))

	if rec.Education == nil {
		rec.Education = []entity.Education{}
	}
	if rec.WorkExperience == nil {
		rec.WorkExperience = []entity.WorkExperience{}
	}
	if rec.SpokenLanguages == nil {
		rec.SpokenLanguages = []string{}
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Sanitizer turns a raw completion into a normalized record, logging schema
// drift without failing on it.
type Sanitizer struct {
	logger *slog.Logger
}

func NewSanitizer(logger *slog.Logger) *Sanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sanitizer{logger: logger}
}

func (s *Sanitizer) Sanitize(ctx context.Context, raw string) (*entity.CandidateRecord, error) {
	log := common.LoggerFrom(ctx, s.logger)

	rec, err := ParseRecord(raw)
	if err != nil {
		log.Error("llm.sanitize.malformed", "error", err, "raw_len", len(raw), "raw", Truncate(raw, 1024))
		return nil, err
	}
	if err := ValidateCandidateJSON([]byte(ExtractPayload(raw))); err != nil {
		log.Warn("llm.sanitize.schema_drift", "error", err)
	}

	Normalize(rec)
	log.Debug("llm.sanitize.ok",
		"skills", len(rec.Skills),
		"education", len(rec.Education),
		"work_experience", len(rec.WorkExperience),
		"spoken_languages", len(rec.SpokenLanguages),
	)
	return rec, nil
}
