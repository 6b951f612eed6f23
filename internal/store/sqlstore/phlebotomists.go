package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

const phlebotomistCols = "id, phlebotomist_id, name, attributes"

type phlebotomistStore struct{ s *Store }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhlebotomist(r rowScanner) (*model.Phlebotomist, error) {
	var (
		p     model.Phlebotomist
		attrs string
	)
	if err := r.Scan(&p.ID, &p.ExternalID, &p.Name, &attrs); err != nil {
		return nil, err
	}
	m, err := decodeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	p.Attributes = m
	return &p, nil
}

func (ps phlebotomistStore) Create(ctx context.Context, p *model.Phlebotomist) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	attrs, err := encodeAttrs(p.Attributes)
	if err != nil {
		return "", err
	}
	_, err = ps.s.exec(ctx,
		"INSERT INTO phlebotomists (id, phlebotomist_id, name, attributes) VALUES (?, ?, ?, ?)",
		id, p.ExternalID, p.Name, attrs)
	if err != nil {
		return "", ps.s.uniqueErr(err, store.KeyPhlebotomistID)
	}
	p.ID = id
	return id, nil
}

func (ps phlebotomistStore) GetByExternalID(ctx context.Context, externalID string) (*model.Phlebotomist, error) {
	row := ps.s.queryRow(ctx, "SELECT "+phlebotomistCols+" FROM phlebotomists WHERE phlebotomist_id = ?", externalID)
	p, err := scanPhlebotomist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

func (ps phlebotomistStore) List(ctx context.Context, q query.Query) ([]*model.Phlebotomist, error) {
	stmt, args, err := ps.s.d.listSQL(phlebotomistCols, "phlebotomists", q)
	if err != nil {
		return nil, err
	}
	rows, err := ps.s.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Phlebotomist{}
	for rows.Next() {
		p, err := scanPhlebotomist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (ps phlebotomistStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	stmt, args, err := ps.s.d.countSQL("phlebotomists", f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = ps.s.queryRow(ctx, stmt, args...).Scan(&n)
	return n, err
}

func (ps phlebotomistStore) Update(ctx context.Context, id string, fields model.PhlebotomistFields) (model.UpdateResult, error) {
	res := model.UpdateResult{Acknowledged: true}
	err := ps.s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			ps.s.d.rebind("SELECT "+phlebotomistCols+" FROM phlebotomists WHERE id = ?"+ps.s.d.lockRows), id)
		cur, err := scanPhlebotomist(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		res.MatchedCount = 1

		next := *cur
		if fields.ExternalID != nil {
			next.ExternalID = *fields.ExternalID
		}
		if fields.Name != nil {
			next.Name = *fields.Name
		}
		next.Attributes = mergeAttrs(cur.Attributes, fields.Attributes)
		if sameJSON(*cur, next) {
			return nil
		}

		attrs, err := encodeAttrs(next.Attributes)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			ps.s.d.rebind("UPDATE phlebotomists SET phlebotomist_id = ?, name = ?, attributes = ? WHERE id = ?"),
			next.ExternalID, next.Name, attrs, id)
		if err != nil {
			return ps.s.uniqueErr(err, store.KeyPhlebotomistID)
		}
		res.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return model.UpdateResult{}, err
	}
	return res, nil
}

func (ps phlebotomistStore) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return deleteByID(ctx, ps.s, "phlebotomists", id)
}

func deleteByID(ctx context.Context, s *Store, table, id string) (model.DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return model.DeleteResult{Acknowledged: true}, nil
	}
	r, err := s.exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return model.DeleteResult{}, err
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: rowsAffected(r)}, nil
}

// sameJSON reports whether two documents encode identically. Map keys are
// sorted by encoding/json, so attribute order does not matter.
func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
