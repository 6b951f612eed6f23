package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
	"github.com/sheikh-riyadh/due-sample-server/internal/store/sqlstore"
)

var dhaka = time.FixedZone("BDT", 6*60*60)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	s := sqlstore.New(db, sqlstore.SQLite)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func strp(s string) *string { return &s }

type fixture struct {
	store   store.Store
	roster  *PhlebotomistService
	samples *SampleService
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newTestStore(t)
	qb := query.NewBuilder(dhaka)
	f := &fixture{
		store:   s,
		roster:  NewPhlebotomistService(s, qb),
		samples: NewSampleService(s, qb, dhaka),
		clock:   time.Date(2024, 1, 5, 6, 0, 0, 0, time.UTC), // noon in Dhaka
	}
	f.samples.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) addPhlebotomist(t *testing.T, ext, name string) {
	t.Helper()
	_, err := f.roster.Add(context.Background(), model.PhlebotomistFields{ExternalID: strp(ext), Name: strp(name)})
	require.NoError(t, err)
}

func (f *fixture) countSamples(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.Samples().Count(context.Background(), query.Filter{})
	require.NoError(t, err)
	return n
}

func TestSampleAdd_UnresolvedReferenceWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.samples.Add(ctx, model.SampleFields{Invoice: strp("INV1"), PhlebotomistID: strp("P404")})
	require.Error(t, err)
	assert.True(t, IsReferenceNotFoundError(err), "got %v", err)
	assert.Equal(t, int64(0), f.countSamples(t))
}

func TestSampleAdd_StampsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")

	res, err := f.samples.Add(ctx, model.SampleFields{
		Invoice:        strp("INV1"),
		Status:         strp("Collected"),
		PhlebotomistID: strp("P1"),
		Attributes:     map[string]any{"patient": "Bob"},
	})
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)

	got, err := f.store.Samples().GetByID(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDue, got.Status, "status is forced on create")
	require.Len(t, got.Phlebotomist, 1)
	assert.Equal(t, "Alice", got.Phlebotomist[0].Name)
	assert.Equal(t, "Bob", got.Attributes["patient"])
	assert.True(t, got.CreatedAt.Equal(f.clock))
	assert.Equal(t, []int{5, 1, 2024}, []int{got.Day, got.Month, got.Year})

	// Found by its Dhaka calendar day only.
	for date, want := range map[string]int64{"2024-01-04": 0, "2024-01-05": 1, "2024-01-06": 0} {
		lst, err := f.samples.List(ctx, query.Params{Date: date, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, want, lst.Total, date)
	}
}

func TestSampleAdd_DuplicateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")

	in := model.SampleFields{Invoice: strp("INV1"), PhlebotomistID: strp("P1")}
	_, err := f.samples.Add(ctx, in)
	require.NoError(t, err)
	_, err = f.samples.Add(ctx, in)
	require.Error(t, err)
	assert.True(t, IsDuplicateKeyError(err))
	assert.Equal(t, MsgDuplicateInvoice, err.Error())
	assert.Equal(t, int64(1), f.countSamples(t))
}

func TestSampleAdd_RequiredFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.samples.Add(context.Background(), model.SampleFields{PhlebotomistID: strp("P1")})
	assert.True(t, IsValidationError(err))
	_, err = f.samples.Add(context.Background(), model.SampleFields{Invoice: strp("INV1")})
	assert.True(t, IsValidationError(err))
}

func TestSampleUpdate_RepeatedUpdateAddsSnapshotOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")
	f.addPhlebotomist(t, "P2", "Bob")

	res, err := f.samples.Add(ctx, model.SampleFields{Invoice: strp("INV1"), PhlebotomistID: strp("P1")})
	require.NoError(t, err)

	upd := model.SampleFields{Status: strp("Collected"), PhlebotomistID: strp("P2")}
	for i := 0; i < 2; i++ {
		f.clock = f.clock.Add(time.Minute)
		r, err := f.samples.Update(ctx, res.InsertedID, upd)
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.MatchedCount)
	}

	got, err := f.store.Samples().GetByID(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, "Collected", got.Status)
	assert.Equal(t, "P2", got.PhlebotomistID)
	require.Len(t, got.Phlebotomist, 2)
	assert.Equal(t, "Alice", got.Phlebotomist[0].Name)
	assert.Equal(t, "Bob", got.Phlebotomist[1].Name)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(f.clock))
}

func TestSampleUpdate_UnresolvedReferenceChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")
	res, err := f.samples.Add(ctx, model.SampleFields{Invoice: strp("INV1"), PhlebotomistID: strp("P1")})
	require.NoError(t, err)

	_, err = f.samples.Update(ctx, res.InsertedID, model.SampleFields{Status: strp("Collected"), PhlebotomistID: strp("P404")})
	assert.True(t, IsReferenceNotFoundError(err))

	got, err := f.store.Samples().GetByID(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDue, got.Status)
	assert.Len(t, got.Phlebotomist, 1)
	assert.Nil(t, got.UpdatedAt)
}

func TestSampleUpdate_StaleSnapshotSurvivesRosterEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")
	res, err := f.samples.Add(ctx, model.SampleFields{Invoice: strp("INV1"), PhlebotomistID: strp("P1")})
	require.NoError(t, err)

	p, err := f.store.Phlebotomists().GetByExternalID(ctx, "P1")
	require.NoError(t, err)
	_, err = f.roster.Update(ctx, p.ID, model.PhlebotomistFields{Name: strp("Alicia")})
	require.NoError(t, err)

	got, err := f.store.Samples().GetByID(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Phlebotomist[0].Name)

	// Re-resolving records the edited roster entry as a new snapshot.
	_, err = f.samples.Update(ctx, res.InsertedID, model.SampleFields{PhlebotomistID: strp("P1")})
	require.NoError(t, err)
	got, err = f.store.Samples().GetByID(ctx, res.InsertedID)
	require.NoError(t, err)
	require.Len(t, got.Phlebotomist, 2)
	assert.Equal(t, "Alicia", got.Phlebotomist[1].Name)
}

func TestSampleList_PagingAndMalformedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")
	for _, inv := range []string{"INV-A", "INV-B", "INV-C"} {
		_, err := f.samples.Add(ctx, model.SampleFields{Invoice: strp(inv), PhlebotomistID: strp("P1")})
		require.NoError(t, err)
	}

	page, err := f.samples.List(ctx, query.Params{Page: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "INV-C", page.Data[0].Invoice)

	beyond, err := f.samples.List(ctx, query.Params{Page: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, int64(3), beyond.Total)

	all, err := f.samples.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)

	_, err = f.samples.List(ctx, query.Params{Date: "yesterday"})
	assert.True(t, IsValidationError(err))
}

func TestPhlebotomist_DuplicateAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPhlebotomist(t, "P1", "Alice")
	f.addPhlebotomist(t, "P2", "Malik")

	_, err := f.roster.Add(ctx, model.PhlebotomistFields{ExternalID: strp("P1"), Name: strp("Again")})
	require.Error(t, err)
	assert.Equal(t, MsgDuplicatePhlebotomist, err.Error())

	lst, err := f.roster.List(ctx, query.Params{Search: "ALI", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), lst.Total)

	lst, err = f.roster.List(ctx, query.Params{Search: "mal", Limit: 10})
	require.NoError(t, err)
	require.Len(t, lst.Data, 1)
	assert.Equal(t, "P2", lst.Data[0].ExternalID)

	p2 := lst.Data[0]
	_, err = f.roster.Update(ctx, p2.ID, model.PhlebotomistFields{ExternalID: strp("P1")})
	assert.True(t, IsDuplicateKeyError(err))

	_, err = f.roster.Add(ctx, model.PhlebotomistFields{ExternalID: strp("P3")})
	assert.True(t, IsValidationError(err))

	del, err := f.roster.Delete(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)
}

func TestAuth_LoginAndCreateUser(t *testing.T) {
	s := newTestStore(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(s, tokens)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, " Admin@Lab.test ", "password123", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@lab.test", u.Email)

	_, err = svc.CreateUser(ctx, "admin@lab.test", "password123", auth.RoleAdmin)
	assert.True(t, IsDuplicateKeyError(err))
	_, err = svc.CreateUser(ctx, "x@lab.test", "short", auth.RoleStaff)
	assert.True(t, IsValidationError(err))
	_, err = svc.CreateUser(ctx, "x@lab.test", "password123", "root")
	assert.True(t, IsValidationError(err))

	tok, exp, err := svc.Login(ctx, "admin@lab.test", "password123")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	sess, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Session{Email: "admin@lab.test", Role: auth.RoleAdmin}, sess)

	_, _, errWrong := svc.Login(ctx, "admin@lab.test", "nope")
	_, _, errUnknown := svc.Login(ctx, "ghost@lab.test", "password123")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}
