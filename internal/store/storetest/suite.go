package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a migrated store. Stores may be shared between runs:
// every case scopes its records with a unique prefix.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	t.Run("Users", func(t *testing.T) { testUsers(ctx, t, s) })
	t.Run("PhlebotomistCRUD", func(t *testing.T) { testPhlebotomistCRUD(ctx, t, s) })
	t.Run("PhlebotomistUnique", func(t *testing.T) { testPhlebotomistUnique(ctx, t, s) })
	t.Run("PhlebotomistSearch", func(t *testing.T) { testPhlebotomistSearch(ctx, t, s) })
	t.Run("SampleUniqueInvoice", func(t *testing.T) { testSampleUniqueInvoice(ctx, t, s) })
	t.Run("SamplePagination", func(t *testing.T) { testSamplePagination(ctx, t, s) })
	t.Run("SampleDateRange", func(t *testing.T) { testSampleDateRange(ctx, t, s) })
	t.Run("SampleUpdateIdempotent", func(t *testing.T) { testSampleUpdateIdempotent(ctx, t, s) })
	t.Run("SampleDelete", func(t *testing.T) { testSampleDelete(ctx, t, s) })
}

func prefix() string { return "t" + uuid.NewString()[:8] + "-" }

func strp(s string) *string { return &s }

func newSample(invoice string, createdAt time.Time, snap model.Phlebotomist) *model.Sample {
	return &model.Sample{
		Invoice:        invoice,
		Status:         model.StatusDue,
		PhlebotomistID: snap.ExternalID,
		Phlebotomist:   model.Snapshots{snap},
		FilterDate:     createdAt,
		CreatedAt:      createdAt,
		Day:            createdAt.Day(),
		Month:          int(createdAt.Month()),
		Year:           createdAt.Year(),
		Attributes:     map[string]any{"patient": "Bob"},
	}
}

func testUsers(ctx context.Context, t *testing.T, s store.Store) {
	email := prefix() + "@example.test"
	u := &model.User{Email: email, PasswordHash: "hash", Role: "admin", CreatedAt: time.Now()}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	got, err := s.Users().GetByEmail(ctx, email)
	if err != nil || got == nil || got.Role != "admin" || got.PasswordHash != "hash" {
		t.Fatalf("GetByEmail: got=%v err=%v", got, err)
	}
	if err := s.Users().Create(ctx, u); !store.IsDuplicateKey(err, store.KeyEmail) {
		t.Fatalf("duplicate user: want DuplicateKeyError(email), got %v", err)
	}
	if _, err := s.Users().GetByEmail(ctx, "missing-"+email); err != store.ErrNotFound {
		t.Fatalf("GetByEmail missing: want ErrNotFound, got %v", err)
	}
}

func testPhlebotomistCRUD(ctx context.Context, t *testing.T, s store.Store) {
	ext := prefix() + "P1"
	p := &model.Phlebotomist{ExternalID: ext, Name: "Alice", Attributes: map[string]any{"phone": "0170"}}
	id, err := s.Phlebotomists().Create(ctx, p)
	if err != nil || id == "" {
		t.Fatalf("Create: id=%q err=%v", id, err)
	}

	got, err := s.Phlebotomists().GetByExternalID(ctx, ext)
	if err != nil || got.ID != id || got.Name != "Alice" || got.Attributes["phone"] != "0170" {
		t.Fatalf("GetByExternalID: got=%+v err=%v", got, err)
	}

	res, err := s.Phlebotomists().Update(ctx, id, model.PhlebotomistFields{
		Name:       strp("Alicia"),
		Attributes: map[string]any{"shift": "night"},
	})
	if err != nil || res.MatchedCount != 1 || res.ModifiedCount != 1 {
		t.Fatalf("Update: res=%+v err=%v", res, err)
	}
	got, err = s.Phlebotomists().GetByExternalID(ctx, ext)
	if err != nil || got.Name != "Alicia" || got.Attributes["phone"] != "0170" || got.Attributes["shift"] != "night" {
		t.Fatalf("after Update: got=%+v err=%v", got, err)
	}

	res, err = s.Phlebotomists().Update(ctx, "does-not-exist", model.PhlebotomistFields{Name: strp("x")})
	if err != nil || res.MatchedCount != 0 {
		t.Fatalf("Update missing: res=%+v err=%v", res, err)
	}

	del, err := s.Phlebotomists().Delete(ctx, id)
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("Delete: res=%+v err=%v", del, err)
	}
	if _, err := s.Phlebotomists().GetByExternalID(ctx, ext); err != store.ErrNotFound {
		t.Fatalf("after Delete: want ErrNotFound, got %v", err)
	}
	del, err = s.Phlebotomists().Delete(ctx, id)
	if err != nil || del.DeletedCount != 0 {
		t.Fatalf("Delete again: res=%+v err=%v", del, err)
	}
}

func testPhlebotomistUnique(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	if _, err := s.Phlebotomists().Create(ctx, &model.Phlebotomist{ExternalID: pre + "A", Name: "A"}); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	_, err := s.Phlebotomists().Create(ctx, &model.Phlebotomist{ExternalID: pre + "A", Name: "again"})
	if !store.IsDuplicateKey(err, store.KeyPhlebotomistID) {
		t.Fatalf("duplicate create: want DuplicateKeyError(phlebotomist_id), got %v", err)
	}

	idB, err := s.Phlebotomists().Create(ctx, &model.Phlebotomist{ExternalID: pre + "B", Name: "B"})
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}
	_, err = s.Phlebotomists().Update(ctx, idB, model.PhlebotomistFields{ExternalID: strp(pre + "A")})
	if !store.IsDuplicateKey(err, store.KeyPhlebotomistID) {
		t.Fatalf("duplicate update: want DuplicateKeyError(phlebotomist_id), got %v", err)
	}
}

func testPhlebotomistSearch(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	for _, name := range []string{"Maria 50%", "MARIA_b", "Mariam", "Other"} {
		if _, err := s.Phlebotomists().Create(ctx, &model.Phlebotomist{ExternalID: pre + name, Name: pre + name}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	qb := query.NewBuilder(time.UTC)

	q, _ := qb.Phlebotomists(query.Params{Search: pre + "maria", Limit: 10})
	if n, err := s.Phlebotomists().Count(ctx, q.Filter); err != nil || n != 3 {
		t.Fatalf("case-insensitive search: n=%d err=%v", n, err)
	}

	// Folding covers letters outside ASCII.
	if _, err := s.Phlebotomists().Create(ctx, &model.Phlebotomist{ExternalID: pre + "arne", Name: pre + "Ärne Ölund"}); err != nil {
		t.Fatalf("Create non-ASCII: %v", err)
	}
	for _, text := range []string{"ärne", "ÄRNE", "ärne ölund", "Ärne ÖLUND"} {
		q, _ := qb.Phlebotomists(query.Params{Search: pre + text, Limit: 10})
		if n, err := s.Phlebotomists().Count(ctx, q.Filter); err != nil || n != 1 {
			t.Fatalf("search %q: n=%d err=%v", text, n, err)
		}
	}

	// Wildcards in the search text match themselves only.
	q, _ = qb.Phlebotomists(query.Params{Search: "50%", Limit: 10})
	lst, err := s.Phlebotomists().List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range lst {
		if p.Name == pre+"Mariam" || p.Name == pre+"Other" {
			t.Fatalf("literal %% search matched %q", p.Name)
		}
	}
	q, _ = qb.Phlebotomists(query.Params{Search: pre + "maria_", Limit: 10})
	if n, err := s.Phlebotomists().Count(ctx, q.Filter); err != nil || n != 1 {
		t.Fatalf("literal _ search: n=%d err=%v", n, err)
	}
}

func testSampleUniqueInvoice(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	snap := model.Phlebotomist{ID: "x", ExternalID: pre + "P", Name: "P"}
	now := time.Now().UTC()
	if _, err := s.Samples().Create(ctx, newSample(pre+"INV", now, snap)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := s.Samples().Create(ctx, newSample(pre+"INV", now, snap))
	if !store.IsDuplicateKey(err, store.KeyInvoice) {
		t.Fatalf("duplicate invoice: want DuplicateKeyError(invoice), got %v", err)
	}
	f := query.Filter{Equals: []query.Equals{{Field: query.FieldInvoice, Value: pre + "INV"}}}
	if n, err := s.Samples().Count(ctx, f); err != nil || n != 1 {
		t.Fatalf("Count after duplicate: n=%d err=%v", n, err)
	}
}

func testSamplePagination(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	snap := model.Phlebotomist{ID: "x", ExternalID: pre + "P", Name: "P"}
	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		if _, err := s.Samples().Create(ctx, newSample(fmt.Sprintf("%sINV%02d", pre, i), base.Add(time.Duration(i)*time.Second), snap)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	qb := query.NewBuilder(time.UTC)
	list := func(page, limit int) []*model.Sample {
		q, err := qb.Samples(query.Params{Search: pre, Page: page, Limit: limit})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		lst, err := s.Samples().List(ctx, q)
		if err != nil {
			t.Fatalf("List page=%d: %v", page, err)
		}
		return lst
	}

	p0, p1, both := list(0, 10), list(1, 10), list(0, 20)
	if len(p0) != 10 || len(p1) != 10 || len(both) != 20 {
		t.Fatalf("page sizes: %d %d %d", len(p0), len(p1), len(both))
	}
	seen := map[string]bool{}
	for _, smp := range append(append([]*model.Sample{}, p0...), p1...) {
		if seen[smp.ID] {
			t.Fatalf("pages overlap on %s", smp.ID)
		}
		seen[smp.ID] = true
	}
	for i, smp := range both {
		var want *model.Sample
		if i < 10 {
			want = p0[i]
		} else {
			want = p1[i-10]
		}
		if smp.ID != want.ID {
			t.Fatalf("union mismatch at %d: %s != %s", i, smp.ID, want.ID)
		}
	}
	// Newest first.
	if both[0].Invoice != pre+"INV24" || both[19].Invoice != pre+"INV05" {
		t.Fatalf("order: first=%s last=%s", both[0].Invoice, both[19].Invoice)
	}

	q, _ := qb.Samples(query.Params{Search: pre, Page: 1, Limit: 10})
	if n, err := s.Samples().Count(ctx, q.Filter); err != nil || n != 25 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}

func testSampleDateRange(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	dhaka := time.FixedZone("BDT", 6*60*60)
	noon := time.Date(2024, 1, 5, 12, 0, 0, 0, dhaka)
	snap := model.Phlebotomist{ID: "x", ExternalID: pre + "P", Name: "P"}
	if _, err := s.Samples().Create(ctx, newSample(pre+"NOON", noon, snap)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	qb := query.NewBuilder(dhaka)
	for date, want := range map[string]int64{"2024-01-04": 0, "2024-01-05": 1, "2024-01-06": 0} {
		q, err := qb.Samples(query.Params{Invoice: pre + "NOON", Date: date, Limit: 10})
		if err != nil {
			t.Fatalf("build %s: %v", date, err)
		}
		if n, err := s.Samples().Count(ctx, q.Filter); err != nil || n != want {
			t.Fatalf("date %s: n=%d want=%d err=%v", date, n, want, err)
		}
		lst, err := s.Samples().List(ctx, q)
		if err != nil || int64(len(lst)) != want {
			t.Fatalf("list date %s: n=%d want=%d err=%v", date, len(lst), want, err)
		}
	}
}

func testSampleUpdateIdempotent(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	alice := model.Phlebotomist{ID: "a", ExternalID: pre + "A", Name: "Alice"}
	bob := model.Phlebotomist{ID: "b", ExternalID: pre + "B", Name: "Bob", Attributes: map[string]any{"phone": "1"}}
	id, err := s.Samples().Create(ctx, newSample(pre+"INV", time.Now().UTC(), alice))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	upd := model.SampleUpdate{
		Fields: model.SampleFields{
			Status:         strp("Collected"),
			PhlebotomistID: strp(bob.ExternalID),
			Attributes:     map[string]any{"note": "redo"},
		},
		AppendSnapshot: &bob,
	}
	stamp := time.Now().UTC().Add(-time.Minute).Truncate(time.Millisecond)
	for i := 0; i < 2; i++ {
		upd.UpdatedAt = stamp.Add(time.Duration(i) * time.Second)
		res, err := s.Samples().Update(ctx, id, upd)
		if err != nil || res.MatchedCount != 1 || res.ModifiedCount != 1 {
			t.Fatalf("Update %d: res=%+v err=%v", i, res, err)
		}
	}
	got, err := s.Samples().GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != "Collected" || got.PhlebotomistID != bob.ExternalID || got.Attributes["note"] != "redo" || got.Attributes["patient"] != "Bob" {
		t.Fatalf("fields after update: %+v", got)
	}
	if len(got.Phlebotomist) != 2 || !got.Phlebotomist.Contains(alice) || !got.Phlebotomist.Contains(bob) {
		t.Fatalf("snapshots after repeated update: %+v", got.Phlebotomist)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(stamp.Add(time.Second)) {
		t.Fatalf("updatedAt after repeated update: got %v want %v", got.UpdatedAt, stamp.Add(time.Second))
	}

	// Reassigning to a phlebotomist already present adds nothing.
	upd.AppendSnapshot = &alice
	upd.Fields = model.SampleFields{PhlebotomistID: strp(alice.ExternalID)}
	if _, err := s.Samples().Update(ctx, id, upd); err != nil {
		t.Fatalf("Update back: %v", err)
	}
	got, _ = s.Samples().GetByID(ctx, id)
	if got == nil || len(got.Phlebotomist) != 2 {
		t.Fatalf("snapshots after reassigning: %+v", got)
	}

	other, err := s.Samples().Create(ctx, newSample(pre+"OTHER", time.Now().UTC(), alice))
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}
	_, err = s.Samples().Update(ctx, other, model.SampleUpdate{Fields: model.SampleFields{Invoice: strp(pre + "INV")}, UpdatedAt: time.Now()})
	if !store.IsDuplicateKey(err, store.KeyInvoice) {
		t.Fatalf("update to duplicate invoice: want DuplicateKeyError(invoice), got %v", err)
	}
}

func testSampleDelete(ctx context.Context, t *testing.T, s store.Store) {
	pre := prefix()
	id, err := s.Samples().Create(ctx, newSample(pre+"INV", time.Now().UTC(), model.Phlebotomist{ExternalID: pre + "P"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res, err := s.Samples().Delete(ctx, "not-an-id"); err != nil || res.DeletedCount != 0 {
		t.Fatalf("Delete invalid id: res=%+v err=%v", res, err)
	}
	if res, err := s.Samples().Delete(ctx, id); err != nil || res.DeletedCount != 1 {
		t.Fatalf("Delete: res=%+v err=%v", res, err)
	}
	if _, err := s.Samples().GetByID(ctx, id); err != store.ErrNotFound {
		t.Fatalf("GetByID after delete: want ErrNotFound, got %v", err)
	}
}
