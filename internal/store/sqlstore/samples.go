package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

const sampleCols = "id, invoice, status, phlebotomist_id, snapshots, filter_date, created_at, updated_at, day, month, year, attributes"

type sampleStore struct{ s *Store }

func scanSample(r rowScanner) (*model.Sample, error) {
	var (
		smp                model.Sample
		snaps, attrs       string
		filterAt, createAt int64
		updateAt           sql.NullInt64
	)
	err := r.Scan(&smp.ID, &smp.Invoice, &smp.Status, &smp.PhlebotomistID, &snaps,
		&filterAt, &createAt, &updateAt, &smp.Day, &smp.Month, &smp.Year, &attrs)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snaps), &smp.Phlebotomist); err != nil {
		return nil, err
	}
	m, err := decodeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	smp.Attributes = m
	smp.FilterDate = fromNanos(filterAt)
	smp.CreatedAt = fromNanos(createAt)
	if updateAt.Valid {
		t := fromNanos(updateAt.Int64)
		smp.UpdatedAt = &t
	}
	return &smp, nil
}

func encodeSnapshots(s model.Snapshots) (string, error) {
	if s == nil {
		s = model.Snapshots{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (ss sampleStore) Create(ctx context.Context, smp *model.Sample) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	snaps, err := encodeSnapshots(smp.Phlebotomist)
	if err != nil {
		return "", err
	}
	attrs, err := encodeAttrs(smp.Attributes)
	if err != nil {
		return "", err
	}
	var updated sql.NullInt64
	if smp.UpdatedAt != nil {
		updated = sql.NullInt64{Int64: toNanos(*smp.UpdatedAt), Valid: true}
	}
	_, err = ss.s.exec(ctx,
		"INSERT INTO samples ("+sampleCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, smp.Invoice, smp.Status, smp.PhlebotomistID, snaps,
		toNanos(smp.FilterDate), toNanos(smp.CreatedAt), updated,
		smp.Day, smp.Month, smp.Year, attrs)
	if err != nil {
		return "", ss.s.uniqueErr(err, store.KeyInvoice)
	}
	smp.ID = id
	return id, nil
}

func (ss sampleStore) GetByID(ctx context.Context, id string) (*model.Sample, error) {
	smp, err := scanSample(ss.s.queryRow(ctx, "SELECT "+sampleCols+" FROM samples WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return smp, err
}

func (ss sampleStore) List(ctx context.Context, q query.Query) ([]*model.Sample, error) {
	stmt, args, err := ss.s.d.listSQL(sampleCols, "samples", q)
	if err != nil {
		return nil, err
	}
	rows, err := ss.s.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Sample{}
	for rows.Next() {
		smp, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

func (ss sampleStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	stmt, args, err := ss.s.d.countSQL("samples", f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = ss.s.queryRow(ctx, stmt, args...).Scan(&n)
	return n, err
}

// Update merges u into the stored row. The snapshot append and the field
// merge happen in one transaction. A matched row is always rewritten since
// every update carries a fresh updatedAt.
func (ss sampleStore) Update(ctx context.Context, id string, u model.SampleUpdate) (model.UpdateResult, error) {
	res := model.UpdateResult{Acknowledged: true}
	err := ss.s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			ss.s.d.rebind("SELECT "+sampleCols+" FROM samples WHERE id = ?"+ss.s.d.lockRows), id)
		cur, err := scanSample(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		res.MatchedCount = 1

		next := *cur
		if f := u.Fields; f.Invoice != nil {
			next.Invoice = *f.Invoice
		}
		if f := u.Fields; f.Status != nil {
			next.Status = *f.Status
		}
		if f := u.Fields; f.PhlebotomistID != nil {
			next.PhlebotomistID = *f.PhlebotomistID
		}
		next.Attributes = mergeAttrs(cur.Attributes, u.Fields.Attributes)
		if u.AppendSnapshot != nil {
			next.Phlebotomist, _ = cur.Phlebotomist.AddIfAbsent(*u.AppendSnapshot)
		}
		if !u.UpdatedAt.IsZero() {
			t := u.UpdatedAt
			next.UpdatedAt = &t
		}

		snaps, err := encodeSnapshots(next.Phlebotomist)
		if err != nil {
			return err
		}
		attrs, err := encodeAttrs(next.Attributes)
		if err != nil {
			return err
		}
		var updated sql.NullInt64
		if next.UpdatedAt != nil {
			updated = sql.NullInt64{Int64: toNanos(*next.UpdatedAt), Valid: true}
		}
		_, err = tx.ExecContext(ctx, ss.s.d.rebind(
			"UPDATE samples SET invoice = ?, status = ?, phlebotomist_id = ?, snapshots = ?, updated_at = ?, attributes = ? WHERE id = ?"),
			next.Invoice, next.Status, next.PhlebotomistID, snaps, updated, attrs, id)
		if err != nil {
			return ss.s.uniqueErr(err, store.KeyInvoice)
		}
		res.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return model.UpdateResult{}, err
	}
	return res, nil
}

func (ss sampleStore) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return deleteByID(ctx, ss.s, "samples", id)
}
