// Package validate decodes request bodies into typed field sets and rejects
// input the stores cannot hold safely.
package validate

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// serverSampleKeys are stamped by the service and dropped from caller input.
// The snapshot list is included so clients cannot forge history.
var serverSampleKeys = []string{"_id", "phlebotomist", "createdAt", "updatedAt", "filterDate", "day", "month", "year"}

// Object decodes a single JSON object.
func Object(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes))
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, services.NewValidationError("body", "must be a JSON object")
	}
	if doc == nil {
		return nil, services.NewValidationError("body", "must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, services.NewValidationError("body", "must contain a single JSON object")
	}
	return doc, nil
}

// AttributeKey rejects keys that would be read as store operators or paths.
func AttributeKey(k string) error {
	if k == "" {
		return services.NewValidationError("body", "empty field name")
	}
	if strings.HasPrefix(k, "$") || strings.Contains(k, ".") || strings.ContainsRune(k, 0) {
		return services.NewValidationError(k, "field name must not start with $ or contain .")
	}
	return nil
}

// Email validates an email address.
func Email(v string) error {
	if v == "" {
		return services.NewValidationError("email", "is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return services.NewValidationError("email", "invalid email")
	}
	return nil
}

// SampleFields maps a sample body onto its field set. Server-stamped keys are
// dropped; everything else not typed becomes an attribute.
func SampleFields(doc map[string]any) (model.SampleFields, error) {
	var f model.SampleFields
	for k, v := range doc {
		if contains(serverSampleKeys, k) {
			continue
		}
		var err error
		switch k {
		case "invoice":
			f.Invoice, err = stringField(k, v)
		case "status":
			f.Status, err = stringField(k, v)
		case "phlebotomist_id":
			f.PhlebotomistID, err = stringField(k, v)
		default:
			if err = AttributeKey(k); err == nil {
				err = attributeValue(k, v)
			}
			if err == nil {
				if f.Attributes == nil {
					f.Attributes = make(map[string]any)
				}
				f.Attributes[k] = v
			}
		}
		if err != nil {
			return model.SampleFields{}, err
		}
	}
	return f, nil
}

// PhlebotomistFields maps a phlebotomist body onto its field set.
func PhlebotomistFields(doc map[string]any) (model.PhlebotomistFields, error) {
	var f model.PhlebotomistFields
	for k, v := range doc {
		var err error
		switch k {
		case "_id":
			continue
		case "phlebotomist_id":
			f.ExternalID, err = stringField(k, v)
		case "name":
			f.Name, err = stringField(k, v)
		default:
			if err = AttributeKey(k); err == nil {
				err = attributeValue(k, v)
			}
			if err == nil {
				if f.Attributes == nil {
					f.Attributes = make(map[string]any)
				}
				f.Attributes[k] = v
			}
		}
		if err != nil {
			return model.PhlebotomistFields{}, err
		}
	}
	return f, nil
}

// stringField accepts strings and, for ids typed as numbers by forms, numbers.
func stringField(k string, v any) (*string, error) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return &s, nil
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s, nil
	}
	return nil, services.NewValidationError(k, "must be a string")
}

// attributeValue checks nested object keys the same way as top-level ones.
func attributeValue(k string, v any) error {
	switch t := v.(type) {
	case map[string]any:
		for nk, nv := range t {
			if err := AttributeKey(nk); err != nil {
				return services.NewValidationError(k+"."+nk, "field name must not start with $ or contain .")
			}
			if err := attributeValue(k+"."+nk, nv); err != nil {
				return err
			}
		}
	case []any:
		for _, e := range t {
			if err := attributeValue(k, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
