package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sheikh-riyadh/due-sample-server/internal/query"
)

// filterDoc translates f into a find filter. Clauses are ANDed; several
// clauses may target the same field, so they go into $and.
func filterDoc(f query.Filter) bson.M {
	var clauses []bson.M
	if c := f.Contains; c != nil {
		clauses = append(clauses, bson.M{c.Field: primitive.Regex{Pattern: regexp.QuoteMeta(c.Text), Options: "i"}})
	}
	for _, e := range f.Equals {
		clauses = append(clauses, bson.M{e.Field: e.Value})
	}
	if r := f.Range; r != nil {
		clauses = append(clauses, bson.M{r.Field: bson.M{"$gte": r.From, "$lt": r.To}})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	}
	and := make(bson.A, len(clauses))
	for i, c := range clauses {
		and[i] = c
	}
	return bson.M{"$and": and}
}

func findOptions(q query.Query) *options.FindOptions {
	sortField := q.Sort.Field
	if sortField == "" {
		sortField = query.FieldID
	}
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: dir}})
	if q.Page.Limit > 0 {
		opts.SetSkip(q.Page.Skip).SetLimit(q.Page.Limit)
	}
	return opts
}
