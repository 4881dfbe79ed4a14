package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dErrors "volunteermatch/pkg/domain-errors"
	pstrings "volunteermatch/pkg/platform/strings"
)

// Availability vocabulary. Input is matched case-insensitively and stored as given.
const (
	AvailabilityWeekdays = "WEEKDAYS"
	AvailabilityWeekends = "WEEKENDS"
	AvailabilityEvenings = "EVENINGS"
	AvailabilityFulltime = "FULLTIME"
)

var availabilities = []string{
	AvailabilityWeekdays,
	AvailabilityWeekends,
	AvailabilityEvenings,
	AvailabilityFulltime,
}

// ValidAvailability reports whether value is in the vocabulary, ignoring case.
func ValidAvailability(value string) bool {
	for _, a := range availabilities {
		if strings.EqualFold(strings.TrimSpace(value), a) {
			return true
		}
	}
	return false
}

// Volunteer is a registered volunteer profile.
//
// Invariants:
//   - ID is assigned once by the registration service, never by a caller
//   - CreatedAt is set at creation and never changes
//   - Skills holds no blanks or duplicates
type Volunteer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Skills       []string  `json:"skills"`
	Availability string    `json:"availability"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// HasSkill reports exact membership of skill.
func (v *Volunteer) HasSkill(skill string) bool {
	for _, s := range v.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// RegisterRequest carries registerVolunteer input.
type RegisterRequest struct {
	Name         string
	Location     string
	Skills       []string
	Availability string
}

// Normalize trims fields and dedupes skills.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Availability = strings.TrimSpace(r.Availability)
	r.Skills = pstrings.DedupeAndTrim(r.Skills)
}

// Validate checks a normalized request.
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Location == "" {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if len(r.Skills) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one skill is required")
	}
	if !ValidAvailability(r.Availability) {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("availability must be one of %s", strings.Join(availabilities, ", ")))
	}
	return nil
}

// Match pairs a volunteer with a score.
type Match struct {
	Volunteer *Volunteer
	Score     int
}

// Timestamp is a UTC instant encoded as RFC 3339 with fractional seconds.
// Decoding also accepts the zone-less ISO form older writers used, read as UTC.
type Timestamp struct {
	time.Time
}

var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// NewTimestamp converts t to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range legacyTimestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}
