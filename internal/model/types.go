package model

import (
	"encoding/json"
	"time"
)

// Sample status values.
const (
	StatusDue = "Due"
)

// Phlebotomist is a sample collector on the clinic roster.
type Phlebotomist struct {
	ID         string         `json:"_id"`
	ExternalID string         `json:"phlebotomist_id"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"-"`
}

// Sample is a due sample awaiting processing. Phlebotomist holds the snapshots
// of every phlebotomist the sample has been resolved against.
type Sample struct {
	ID             string         `json:"_id"`
	Invoice        string         `json:"invoice"`
	Status         string         `json:"status"`
	PhlebotomistID string         `json:"phlebotomist_id"`
	Phlebotomist   Snapshots      `json:"phlebotomist"`
	FilterDate     time.Time      `json:"filterDate"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
	Day            int            `json:"day"`
	Month          int            `json:"month"`
	Year           int            `json:"year"`
	Attributes     map[string]any `json:"-"`
}

// User is a credential record. The password hash never leaves the server.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PhlebotomistFields is a caller-supplied field set for create or partial update.
// Nil pointers mean "not supplied".
type PhlebotomistFields struct {
	ExternalID *string
	Name       *string
	Attributes map[string]any
}

// SampleFields is a caller-supplied field set for create or partial update.
// Server-stamped keys and the snapshot list are never part of it.
type SampleFields struct {
	Invoice        *string
	Status         *string
	PhlebotomistID *string
	Attributes     map[string]any
}

// SampleUpdate is a fully prepared sample mutation ready for the store.
type SampleUpdate struct {
	Fields    SampleFields
	UpdatedAt time.Time
	// AppendSnapshot is added to the snapshot list only if no equal entry exists.
	AppendSnapshot *Phlebotomist
}

// InsertResult acknowledges a single insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult acknowledges a single-document update.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult acknowledges a single-document delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// ListResult is the body of every list endpoint.
type ListResult[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// Reserved JSON keys of a phlebotomist document.
var phlebotomistKeys = []string{"_id", "phlebotomist_id", "name"}

// Reserved JSON keys of a sample document.
var sampleKeys = []string{"_id", "invoice", "status", "phlebotomist_id", "phlebotomist",
	"filterDate", "createdAt", "updatedAt", "day", "month", "year"}

// MarshalJSON flattens Attributes next to the named fields.
func (p Phlebotomist) MarshalJSON() ([]byte, error) {
	doc := withAttributes(p.Attributes, len(phlebotomistKeys))
	doc["_id"] = p.ID
	doc["phlebotomist_id"] = p.ExternalID
	doc["name"] = p.Name
	return json.Marshal(doc)
}

// UnmarshalJSON collects unknown keys into Attributes.
func (p *Phlebotomist) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	type plain Phlebotomist
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	attrs, err := extraAttributes(raw, phlebotomistKeys)
	if err != nil {
		return err
	}
	out.Attributes = attrs
	*p = Phlebotomist(out)
	return nil
}

// MarshalJSON flattens Attributes next to the named fields.
func (s Sample) MarshalJSON() ([]byte, error) {
	doc := withAttributes(s.Attributes, len(sampleKeys))
	doc["_id"] = s.ID
	doc["invoice"] = s.Invoice
	doc["status"] = s.Status
	doc["phlebotomist_id"] = s.PhlebotomistID
	snaps := s.Phlebotomist
	if snaps == nil {
		snaps = Snapshots{}
	}
	doc["phlebotomist"] = snaps
	doc["filterDate"] = s.FilterDate
	doc["createdAt"] = s.CreatedAt
	if s.UpdatedAt != nil {
		doc["updatedAt"] = s.UpdatedAt
	}
	doc["day"] = s.Day
	doc["month"] = s.Month
	doc["year"] = s.Year
	return json.Marshal(doc)
}

// UnmarshalJSON collects unknown keys into Attributes.
func (s *Sample) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	type plain Sample
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	attrs, err := extraAttributes(raw, sampleKeys)
	if err != nil {
		return err
	}
	out.Attributes = attrs
	*s = Sample(out)
	return nil
}

// IsReservedSampleKey reports whether key is owned by the server or the typed fields.
func IsReservedSampleKey(key string) bool { return contains(sampleKeys, key) }

// IsReservedPhlebotomistKey reports whether key is one of the typed phlebotomist fields.
func IsReservedPhlebotomistKey(key string) bool { return contains(phlebotomistKeys, key) }

func withAttributes(attrs map[string]any, extra int) map[string]any {
	doc := make(map[string]any, len(attrs)+extra)
	for k, v := range attrs {
		doc[k] = v
	}
	return doc
}

func extraAttributes(raw map[string]json.RawMessage, reserved []string) (map[string]any, error) {
	var attrs map[string]any
	for k, v := range raw {
		if contains(reserved, k) {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[k] = val
	}
	return attrs, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
