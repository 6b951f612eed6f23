package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sheikh-riyadh/due-sample-server/internal/logger"
	"github.com/sheikh-riyadh/due-sample-server/internal/model"
)

type fakeUsers struct {
	Users
	err error
}

func (f fakeUsers) GetByEmail(context.Context, string) (*model.User, error) { return nil, f.err }

type lookupStore struct {
	Store
	users fakeUsers
}

func (s lookupStore) Users() Users { return s.users }

type pingStore struct {
	lookupStore
	pingErr error
}

func (s pingStore) HealthPing(context.Context) error { return s.pingErr }

func TestNewHealthChecker_NamesStoreAndDriver(t *testing.T) {
	c := NewHealthChecker(pingStore{}, "postgres", logger.Nop(), time.Second)
	s := c.Check(context.Background())
	assert.True(t, s.Healthy)
	assert.Equal(t, HealthComponent, s.Name)
	assert.Equal(t, "postgres", s.Driver)
}

func TestNewHealthChecker_PrefersPing(t *testing.T) {
	st := pingStore{
		lookupStore: lookupStore{users: fakeUsers{err: ErrNotFound}},
		pingErr:     errors.New("server selection timeout"),
	}
	s := NewHealthChecker(st, "mongo", logger.Nop(), time.Second).Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Equal(t, "server selection timeout", s.Error)
}

func TestNewHealthChecker_LookupFallback(t *testing.T) {
	ok := lookupStore{users: fakeUsers{err: ErrNotFound}}
	assert.True(t, NewHealthChecker(ok, "sqlite", logger.Nop(), time.Second).Check(context.Background()).Healthy)

	broken := lookupStore{users: fakeUsers{err: errors.New("database is locked")}}
	s := NewHealthChecker(broken, "sqlite", logger.Nop(), time.Second).Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Equal(t, "database is locked", s.Error)
}
