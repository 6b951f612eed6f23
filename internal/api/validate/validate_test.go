package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

func TestObject(t *testing.T) {
	doc, err := Object(strings.NewReader(`{"invoice":"INV1"}`))
	require.NoError(t, err)
	assert.Equal(t, "INV1", doc["invoice"])

	for _, bad := range []string{``, `[]`, `null`, `"x"`, `{"a":1} {"b":2}`, `{`} {
		_, err := Object(strings.NewReader(bad))
		assert.True(t, services.IsValidationError(err), "input %q", bad)
	}
}

func TestSampleFields_StripsServerKeys(t *testing.T) {
	doc := map[string]any{
		"invoice":         "INV1",
		"status":          "Collected",
		"phlebotomist_id": "P1",
		"phlebotomist":    []any{map[string]any{"name": "forged"}},
		"createdAt":       "2020-01-01",
		"_id":             "x",
		"patient":         "Bob",
	}
	f, err := SampleFields(doc)
	require.NoError(t, err)
	assert.Equal(t, "INV1", *f.Invoice)
	assert.Equal(t, "Collected", *f.Status)
	assert.Equal(t, "P1", *f.PhlebotomistID)
	assert.Equal(t, map[string]any{"patient": "Bob"}, f.Attributes)
}

func TestSampleFields_Rejects(t *testing.T) {
	cases := map[string]map[string]any{
		"operator key":    {"$where": "1"},
		"dotted key":      {"a.b": 1},
		"nested operator": {"meta": map[string]any{"$set": 1}},
		"typed non-str":   {"invoice": true},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := SampleFields(doc)
			assert.True(t, services.IsValidationError(err), "got %v", err)
		})
	}
}

func TestPhlebotomistFields_NumericID(t *testing.T) {
	f, err := PhlebotomistFields(map[string]any{"phlebotomist_id": float64(1024), "name": " Alice ", "phone": "0170"})
	require.NoError(t, err)
	assert.Equal(t, "1024", *f.ExternalID)
	assert.Equal(t, "Alice", *f.Name)
	assert.Equal(t, "0170", f.Attributes["phone"])
	assert.Nil(t, f.Attributes["_id"])
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@lab.test"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}
