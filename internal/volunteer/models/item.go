package models

import (
	"encoding/json"
	"fmt"

	pstrings "volunteermatch/pkg/platform/strings"
)

// EntityTypeVolunteer discriminates volunteer items from anything else
// sharing the table.
const EntityTypeVolunteer = "Volunteer"

// Key prefixes.
const (
	prefixVolunteer    = "VOLUNTEER#"
	prefixProfile      = "PROFILE#"
	prefixLocation     = "LOCATION#"
	prefixAvailability = "AVAILABILITY#"
)

// Item is the stored projection of a record. The secondary index is keyed on
// GSI1PK (location) and GSI1SK (availability), both uppercased; Data holds
// the JSON payload with the original casing.
type Item struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	Data       string `dynamodbav:"Data"`
}

// LocationKey is the GSI1 partition key for location.
func LocationKey(location string) string {
	return prefixLocation + pstrings.UpperKey(location)
}

// AvailabilityKey is the GSI1 sort key for availability.
func AvailabilityKey(availability string) string {
	return prefixAvailability + pstrings.UpperKey(availability)
}

// NewVolunteerItem builds the stored item for v.
func NewVolunteerItem(v *Volunteer) (*Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal volunteer %s: %w", v.ID, err)
	}
	return &Item{
		PK:         prefixVolunteer + v.ID,
		SK:         prefixProfile + v.ID,
		GSI1PK:     LocationKey(v.Location),
		GSI1SK:     AvailabilityKey(v.Availability),
		EntityType: EntityTypeVolunteer,
		Data:       string(data),
	}, nil
}

// IsVolunteer reports whether the item carries a volunteer payload.
func (i *Item) IsVolunteer() bool {
	return i.EntityType == EntityTypeVolunteer
}

// Volunteer decodes the payload. Callers check IsVolunteer first.
func (i *Item) Volunteer() (*Volunteer, error) {
	var v Volunteer
	if err := json.Unmarshal([]byte(i.Data), &v); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", i.PK, err)
	}
	return &v, nil
}
