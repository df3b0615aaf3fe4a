package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/config"
	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/events"
	"github.com/spec-kit/staff-schedule/internal/persistence"
	"github.com/spec-kit/staff-schedule/internal/repository/gormrepo"
)

type fixture struct {
	store     *gormrepo.Store
	schedule  *ScheduleService
	users     *UserService
	cache     *memoryCache
	published *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.NewSQLite(config.StorageConfig{
		Driver:     config.StorageSQLite,
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store, err := gormrepo.NewStore(db)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	dispatcher.Subscribe(events.EventScheduleSaved, rec.handle)
	dispatcher.Subscribe(events.EventScheduleApprovalChanged, rec.handle)
	memCache := newMemoryCache()

	return &fixture{
		store: store,
		schedule: NewScheduleService(ScheduleDependencies{
			Transactor:   store,
			UserRepo:     store.Users(),
			MonthRepo:    store.Months(),
			DayEntryRepo: store.DayEntries(),
			Cache:        memCache,
			Dispatcher:   dispatcher,
		}),
		users: NewUserService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, UserDependencies{
			Transactor:   store,
			UserRepo:     store.Users(),
			DayEntryRepo: store.DayEntries(),
			Tokens:       auth.NewTokenManager("test-secret", 5),
		}),
		cache:     memCache,
		published: rec,
	}
}

// account stores a user directly and returns it as a caller.
func (f *fixture) account(t *testing.T, username string, roles ...domain.Role) domain.Caller {
	t.Helper()
	hash, err := auth.HashPassword("secret-"+username, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FirstName:    username,
		Position:     "barista",
		Roles:        roles,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return domain.CallerFromUser(user)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type memoryCache struct {
	mu   sync.Mutex
	vals map[domain.YearMonth]bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{vals: make(map[domain.YearMonth]bool)}
}

func (c *memoryCache) Get(_ context.Context, ym domain.YearMonth) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[ym]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, ym domain.YearMonth, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[ym] = approved
	return nil
}

func (c *memoryCache) SetIfAbsent(_ context.Context, ym domain.YearMonth, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vals[ym]; !ok {
		c.vals[ym] = approved
	}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, ym domain.YearMonth) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, ym)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
