package sqlstore

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-riyadh/due-sample-server/internal/query"
)

func TestWhere_Empty(t *testing.T) {
	w, args, err := SQLite.where(query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, w)
	assert.Empty(t, args)
}

func TestWhere_AllClauses(t *testing.T) {
	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	f := query.Filter{
		Contains: &query.Contains{Field: query.FieldInvoice, Text: "50%_x"},
		Equals:   []query.Equals{{Field: query.FieldStatus, Value: "Due"}},
		Range:    &query.TimeRange{Field: query.FieldFilterDate, From: from, To: from.AddDate(0, 0, 1)},
	}
	w, args, err := SQLite.where(f)
	require.NoError(t, err)
	assert.Equal(t, ` WHERE unicode_lower(invoice) LIKE ? ESCAPE '\' AND status = ? AND filter_date >= ? AND filter_date < ?`, w)
	assert.Equal(t, []any{`%50\%\_x%`, "Due", from.UnixNano(), from.AddDate(0, 0, 1).UnixNano()}, args)

	w, _, err = Postgres.where(f)
	require.NoError(t, err)
	assert.Contains(t, w, "LOWER(invoice) LIKE ?")
}

func TestWhere_UnknownField(t *testing.T) {
	_, _, err := SQLite.where(query.Filter{Equals: []query.Equals{{Field: "patient", Value: "x"}}})
	assert.Error(t, err)
}

func TestListSQL_PagedAndRebound(t *testing.T) {
	q := query.Query{
		Filter: query.Filter{Equals: []query.Equals{{Field: query.FieldStatus, Value: "Due"}}},
		Page:   query.Page{Skip: 10, Limit: 10},
		Sort:   query.Sort{Field: query.FieldID, Desc: true},
	}
	stmt, args, err := SQLite.listSQL("id", "samples", q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM samples WHERE status = ? ORDER BY id DESC LIMIT ? OFFSET ?", stmt)
	assert.Equal(t, []any{"Due", int64(10), int64(10)}, args)
	assert.Equal(t, "SELECT id FROM samples WHERE status = $1 ORDER BY id DESC LIMIT $2 OFFSET $3", Postgres.rebind(stmt))
	assert.Equal(t, stmt, SQLite.rebind(stmt))
}

func TestListSQL_Unpaged(t *testing.T) {
	stmt, args, err := SQLite.listSQL("id", "samples", query.Unpaged(query.Filter{}))
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM samples ORDER BY id DESC", stmt)
	assert.Empty(t, args)
}

func TestWhere_FoldsSearchText(t *testing.T) {
	_, args, err := SQLite.where(query.Filter{Contains: &query.Contains{Field: query.FieldName, Text: "ÄRNE"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"%ärne%"}, args)
}

func TestFoldValue(t *testing.T) {
	cases := []struct {
		in, want driver.Value
	}{
		{"Ärne ÖLUND", "ärne ölund"},
		{[]byte("ÉCOLE"), "école"},
		{int64(7), int64(7)},
		{nil, nil},
	}
	for _, tc := range cases {
		got, err := foldValue(nil, []driver.Value{tc.in})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestDDLStatements(t *testing.T) {
	stmts := DDLStatements()
	require.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.NotContains(t, s, "--")
		assert.Contains(t, s, "IF NOT EXISTS")
	}
}
