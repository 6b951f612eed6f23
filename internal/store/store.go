package store

import (
	"context"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (mongo, sqlstore).
type Store interface {
	Phlebotomists() Phlebotomists
	Samples() Samples
	Users() Users

	// Migrate creates collections, tables and unique indexes. It is idempotent.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

type Phlebotomists interface {
	Create(ctx context.Context, p *model.Phlebotomist) (string, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Phlebotomist, error)
	List(ctx context.Context, q query.Query) ([]*model.Phlebotomist, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	Update(ctx context.Context, id string, fields model.PhlebotomistFields) (model.UpdateResult, error)
	Delete(ctx context.Context, id string) (model.DeleteResult, error)
}

type Samples interface {
	Create(ctx context.Context, s *model.Sample) (string, error)
	// GetByID reads one sample. No route serves single samples; the storage
	// compliance suite in storetest reads writes back through it.
	GetByID(ctx context.Context, id string) (*model.Sample, error)
	List(ctx context.Context, q query.Query) ([]*model.Sample, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	// Update merges the fields and adds u.AppendSnapshot to the snapshot list
	// unless an equal entry is already present.
	Update(ctx context.Context, id string, u model.SampleUpdate) (model.UpdateResult, error)
	Delete(ctx context.Context, id string) (model.DeleteResult, error)
}

type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
