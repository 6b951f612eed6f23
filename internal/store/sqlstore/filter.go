package sqlstore

import (
	"fmt"
	"strings"

	"github.com/sheikh-riyadh/due-sample-server/internal/query"
)

// columns maps document fields to SQL columns.
var columns = map[string]string{
	query.FieldID:         "id",
	query.FieldName:       "name",
	query.FieldInvoice:    "invoice",
	query.FieldStatus:     "status",
	query.FieldFilterDate: "filter_date",
}

func column(field string) (string, error) {
	c, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("unsupported filter field %q", field)
	}
	return c, nil
}

// likeEscaper escapes LIKE wildcards so search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders f as a WHERE clause (empty for the zero filter) and its args.
// Search text is folded in Go and the column by the dialect's fold function,
// so non-ASCII letters compare case-insensitively on every engine.
func (d Dialect) where(f query.Filter) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	if c := f.Contains; c != nil {
		col, err := column(c.Field)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, d.foldFunc(), col))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(c.Text))+"%")
	}
	for _, e := range f.Equals {
		col, err := column(e.Field)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, col+" = ?")
		args = append(args, e.Value)
	}
	if r := f.Range; r != nil {
		col, err := column(r.Field)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, col+" >= ? AND "+col+" < ?")
		args = append(args, toNanos(r.From), toNanos(r.To))
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// listSQL renders the full SELECT for q over table.
func (d Dialect) listSQL(cols, table string, q query.Query) (string, []any, error) {
	w, args, err := d.where(q.Filter)
	if err != nil {
		return "", nil, err
	}
	sortField := q.Sort.Field
	if sortField == "" {
		sortField = query.FieldID
	}
	orderCol, err := column(sortField)
	if err != nil {
		return "", nil, err
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s", cols, table, w, orderCol, dir)
	if q.Page.Limit > 0 {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, q.Page.Limit, q.Page.Skip)
	}
	return stmt, args, nil
}

func (d Dialect) countSQL(table string, f query.Filter) (string, []any, error) {
	w, args, err := d.where(f)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + table + w, args, nil
}
