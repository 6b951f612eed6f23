package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// SampleService manages due samples. Every write that names a phlebotomist
// resolves it first; an unresolvable reference rejects the whole write.
type SampleService struct {
	store store.Store
	qb    query.Builder
	loc   *time.Location
	now   func() time.Time
}

// NewSampleService creates a sample service stamping times in loc.
func NewSampleService(s store.Store, qb query.Builder, loc *time.Location) *SampleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SampleService{store: s, qb: qb, loc: loc, now: time.Now}
}

// resolve looks up the phlebotomist by exact external id.
func (s *SampleService) resolve(ctx context.Context, externalID string) (*model.Phlebotomist, error) {
	p, err := s.store.Phlebotomists().GetByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewReferenceNotFoundError("phlebotomist_id", externalID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PrepareCreate builds the sample document to insert: caller fields merged,
// status forced to Due, the resolved phlebotomist as the only snapshot and
// creation stamps in the service zone.
func (s *SampleService) PrepareCreate(ctx context.Context, f model.SampleFields) (*model.Sample, error) {
	if f.Invoice == nil || strings.TrimSpace(*f.Invoice) == "" {
		return nil, NewValidationError("invoice", "is required")
	}
	if f.PhlebotomistID == nil || strings.TrimSpace(*f.PhlebotomistID) == "" {
		return nil, NewValidationError("phlebotomist_id", "is required")
	}
	p, err := s.resolve(ctx, *f.PhlebotomistID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	return &model.Sample{
		Invoice:        *f.Invoice,
		Status:         model.StatusDue,
		PhlebotomistID: p.ExternalID,
		Phlebotomist:   model.Snapshots{*p},
		FilterDate:     now,
		CreatedAt:      now,
		Day:            now.Day(),
		Month:          int(now.Month()),
		Year:           now.Year(),
		Attributes:     f.Attributes,
	}, nil
}

// Add validates and inserts a sample.
func (s *SampleService) Add(ctx context.Context, f model.SampleFields) (model.InsertResult, error) {
	smp, err := s.PrepareCreate(ctx, f)
	if err != nil {
		return model.InsertResult{}, err
	}
	id, err := s.store.Samples().Create(ctx, smp)
	if err != nil {
		return model.InsertResult{}, sampleWriteErr(err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// PrepareUpdate builds the mutation for a partial update. A supplied
// phlebotomist_id is resolved and its snapshot added to the history.
func (s *SampleService) PrepareUpdate(ctx context.Context, f model.SampleFields) (model.SampleUpdate, error) {
	if f.Invoice != nil && strings.TrimSpace(*f.Invoice) == "" {
		return model.SampleUpdate{}, NewValidationError("invoice", "must not be empty")
	}
	u := model.SampleUpdate{Fields: f, UpdatedAt: s.now().In(s.loc)}
	if f.PhlebotomistID != nil {
		if strings.TrimSpace(*f.PhlebotomistID) == "" {
			return model.SampleUpdate{}, NewValidationError("phlebotomist_id", "must not be empty")
		}
		p, err := s.resolve(ctx, *f.PhlebotomistID)
		if err != nil {
			return model.SampleUpdate{}, err
		}
		u.AppendSnapshot = p
	}
	return u, nil
}

// Update applies a partial update to the sample with internal id.
func (s *SampleService) Update(ctx context.Context, id string, f model.SampleFields) (model.UpdateResult, error) {
	u, err := s.PrepareUpdate(ctx, f)
	if err != nil {
		return model.UpdateResult{}, err
	}
	res, err := s.store.Samples().Update(ctx, id, u)
	if err != nil {
		return model.UpdateResult{}, sampleWriteErr(err)
	}
	return res, nil
}

// List returns one page of samples and the total match count.
func (s *SampleService) List(ctx context.Context, p query.Params) (model.ListResult[*model.Sample], error) {
	q, err := s.qb.Samples(p)
	if err != nil {
		return model.ListResult[*model.Sample]{}, NewValidationError("date", err.Error())
	}
	return s.list(ctx, q)
}

// Overview returns every sample, newest first.
func (s *SampleService) Overview(ctx context.Context) (model.ListResult[*model.Sample], error) {
	return s.list(ctx, query.Unpaged(query.Filter{}))
}

func (s *SampleService) list(ctx context.Context, q query.Query) (model.ListResult[*model.Sample], error) {
	data, err := s.store.Samples().List(ctx, q)
	if err != nil {
		return model.ListResult[*model.Sample]{}, err
	}
	total, err := s.store.Samples().Count(ctx, q.Filter)
	if err != nil {
		return model.ListResult[*model.Sample]{}, err
	}
	return model.ListResult[*model.Sample]{Data: data, Total: total}, nil
}

// Delete removes the sample with internal id.
func (s *SampleService) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return s.store.Samples().Delete(ctx, id)
}

func sampleWriteErr(err error) error {
	if store.IsDuplicateKey(err, store.KeyInvoice) {
		return NewDuplicateKeyError("invoice", MsgDuplicateInvoice)
	}
	return err
}
