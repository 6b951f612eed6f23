package mongo

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
)

type phlebotomistDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ExternalID string             `bson:"phlebotomist_id"`
	Name       string             `bson:"name"`
	Attributes map[string]any     `bson:",inline"`
}

type sampleDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Invoice        string             `bson:"invoice"`
	Status         string             `bson:"status"`
	PhlebotomistID string             `bson:"phlebotomist_id"`
	Phlebotomist   []bson.D           `bson:"phlebotomist"`
	FilterDate     time.Time          `bson:"filterDate"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      *time.Time         `bson:"updatedAt,omitempty"`
	Day            int                `bson:"day"`
	Month          int                `bson:"month"`
	Year           int                `bson:"year"`
	Attributes     map[string]any     `bson:",inline"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func toPhlebotomistDoc(p *model.Phlebotomist) phlebotomistDoc {
	return phlebotomistDoc{ExternalID: p.ExternalID, Name: p.Name, Attributes: p.Attributes}
}

func (d phlebotomistDoc) model() *model.Phlebotomist {
	return &model.Phlebotomist{
		ID:         d.ID.Hex(),
		ExternalID: d.ExternalID,
		Name:       d.Name,
		Attributes: normalizeMap(d.Attributes),
	}
}

func toSampleDoc(s *model.Sample) sampleDoc {
	snaps := make([]bson.D, 0, len(s.Phlebotomist))
	for _, p := range s.Phlebotomist {
		snaps = append(snaps, snapshotDoc(p))
	}
	return sampleDoc{
		Invoice:        s.Invoice,
		Status:         s.Status,
		PhlebotomistID: s.PhlebotomistID,
		Phlebotomist:   snaps,
		FilterDate:     s.FilterDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Day:            s.Day,
		Month:          s.Month,
		Year:           s.Year,
		Attributes:     s.Attributes,
	}
}

func (d sampleDoc) model() *model.Sample {
	snaps := make(model.Snapshots, 0, len(d.Phlebotomist))
	for _, sd := range d.Phlebotomist {
		snaps = append(snaps, snapshotFromDoc(sd))
	}
	return &model.Sample{
		ID:             d.ID.Hex(),
		Invoice:        d.Invoice,
		Status:         d.Status,
		PhlebotomistID: d.PhlebotomistID,
		Phlebotomist:   snaps,
		FilterDate:     d.FilterDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Day:            d.Day,
		Month:          d.Month,
		Year:           d.Year,
		Attributes:     normalizeMap(d.Attributes),
	}
}

// snapshotDoc encodes p with a fixed field order and sorted attribute keys.
// $addToSet compares documents field by field, so equal snapshots must encode
// identically no matter the map iteration order.
func snapshotDoc(p model.Phlebotomist) bson.D {
	var id any = p.ID
	if oid, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		id = oid
	}
	d := bson.D{
		{Key: "_id", Value: id},
		{Key: "phlebotomist_id", Value: p.ExternalID},
		{Key: "name", Value: p.Name},
	}
	return append(d, sortedDoc(p.Attributes)...)
}

func snapshotFromDoc(d bson.D) model.Phlebotomist {
	var p model.Phlebotomist
	for _, e := range d {
		switch e.Key {
		case "_id":
			switch v := e.Value.(type) {
			case primitive.ObjectID:
				p.ID = v.Hex()
			case string:
				p.ID = v
			}
		case "phlebotomist_id":
			p.ExternalID, _ = e.Value.(string)
		case "name":
			p.Name, _ = e.Value.(string)
		default:
			if p.Attributes == nil {
				p.Attributes = make(map[string]any)
			}
			p.Attributes[e.Key] = normalize(e.Value)
		}
	}
	return p
}

func sortedDoc(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: sortedValue(m[k])})
	}
	return d
}

func sortedValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return sortedDoc(t)
	case []any:
		out := make(bson.A, len(t))
		for i := range t {
			out[i] = sortedValue(t[i])
		}
		return out
	}
	return v
}

// normalize turns decoded BSON containers into plain maps and slices so they
// encode as ordinary JSON objects and arrays.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case primitive.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}
