package services

import (
	"context"
	"strings"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// PhlebotomistService manages the roster.
type PhlebotomistService struct {
	store store.Store
	qb    query.Builder
}

func NewPhlebotomistService(s store.Store, qb query.Builder) *PhlebotomistService {
	return &PhlebotomistService{store: s, qb: qb}
}

// Add creates a phlebotomist. phlebotomist_id and name are required.
func (s *PhlebotomistService) Add(ctx context.Context, f model.PhlebotomistFields) (model.InsertResult, error) {
	if f.ExternalID == nil || strings.TrimSpace(*f.ExternalID) == "" {
		return model.InsertResult{}, NewValidationError("phlebotomist_id", "is required")
	}
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return model.InsertResult{}, NewValidationError("name", "is required")
	}
	p := &model.Phlebotomist{ExternalID: *f.ExternalID, Name: *f.Name, Attributes: f.Attributes}
	id, err := s.store.Phlebotomists().Create(ctx, p)
	if err != nil {
		return model.InsertResult{}, phlebotomistWriteErr(err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// List returns one page of the roster and the total match count.
func (s *PhlebotomistService) List(ctx context.Context, p query.Params) (model.ListResult[*model.Phlebotomist], error) {
	q, err := s.qb.Phlebotomists(p)
	if err != nil {
		return model.ListResult[*model.Phlebotomist]{}, NewValidationError("query", err.Error())
	}
	data, err := s.store.Phlebotomists().List(ctx, q)
	if err != nil {
		return model.ListResult[*model.Phlebotomist]{}, err
	}
	total, err := s.store.Phlebotomists().Count(ctx, q.Filter)
	if err != nil {
		return model.ListResult[*model.Phlebotomist]{}, err
	}
	return model.ListResult[*model.Phlebotomist]{Data: data, Total: total}, nil
}

// Update merges f into the phlebotomist with internal id. Samples keep the
// snapshots they already hold.
func (s *PhlebotomistService) Update(ctx context.Context, id string, f model.PhlebotomistFields) (model.UpdateResult, error) {
	if f.ExternalID != nil && strings.TrimSpace(*f.ExternalID) == "" {
		return model.UpdateResult{}, NewValidationError("phlebotomist_id", "must not be empty")
	}
	res, err := s.store.Phlebotomists().Update(ctx, id, f)
	if err != nil {
		return model.UpdateResult{}, phlebotomistWriteErr(err)
	}
	return res, nil
}

// Delete removes the phlebotomist with internal id. Nothing cascades.
func (s *PhlebotomistService) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	return s.store.Phlebotomists().Delete(ctx, id)
}

func phlebotomistWriteErr(err error) error {
	if store.IsDuplicateKey(err, store.KeyPhlebotomistID) {
		return NewDuplicateKeyError("phlebotomist_id", MsgDuplicatePhlebotomist)
	}
	return err
}
