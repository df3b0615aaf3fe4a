package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/cache"
	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/events"
	"github.com/spec-kit/staff-schedule/internal/repository"
	"github.com/spec-kit/staff-schedule/internal/schedule"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

var (
	ownScheduleRoles = []domain.Role{domain.RoleStaff, domain.RoleCafeAdmin}
	managerRoles     = []domain.Role{domain.RoleCafeAdmin}
)

// ScheduleService runs the month schedule workflows. Every operation takes
// the caller explicitly and runs in one storage transaction.
type ScheduleService struct {
	tx         repository.Transactor
	users      repository.UserRepository
	entries    repository.DayEntryRepository
	registry   *MonthRegistry
	cache      cache.ApprovalCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ScheduleDependencies bundles collaborators for the schedule service.
type ScheduleDependencies struct {
	Transactor   repository.Transactor
	UserRepo     repository.UserRepository
	MonthRepo    repository.MonthRepository
	DayEntryRepo repository.DayEntryRepository
	Cache        cache.ApprovalCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewScheduleService constructs the service. Cache and Logger are optional.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	svc := &ScheduleService{
		tx:         deps.Transactor,
		users:      deps.UserRepo,
		entries:    deps.DayEntryRepo,
		registry:   NewMonthRegistry(deps.MonthRepo),
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	if svc.cache == nil {
		svc.cache = cache.Noop{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// GetMySchedule returns the caller's days for the month of monthDate.
func (s *ScheduleService) GetMySchedule(ctx context.Context, caller domain.Caller, monthDate time.Time) (*domain.ScheduleView, error) {
	if err := auth.RequireRole(caller, ownScheduleRoles...); err != nil {
		return nil, err
	}
	ym := domain.YearMonthOf(monthDate)

	var view *domain.ScheduleView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.loadUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		month, err := s.registry.GetOrCreate(ctx, ym)
		if err != nil {
			return err
		}
		view, err = s.userView(ctx, user, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SaveMySchedule replaces the caller's days for the month with the
// reconciled submission.
func (s *ScheduleService) SaveMySchedule(ctx context.Context, caller domain.Caller, monthDate time.Time, days []domain.DayStatus) (*domain.ScheduleView, error) {
	if err := auth.RequireRole(caller, ownScheduleRoles...); err != nil {
		return nil, err
	}
	ym := domain.YearMonthOf(monthDate)
	reconciled, err := schedule.Reconcile(days, ym)
	if err != nil {
		return nil, err
	}

	var view *domain.ScheduleView
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.loadUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		month, err := s.registry.GetOrCreateLocked(ctx, ym)
		if err != nil {
			return err
		}
		if month.Approved {
			return apperrors.NewMonthLocked(ym.String())
		}
		if err := s.replaceDays(ctx, user.ID, month.ID, reconciled); err != nil {
			return err
		}
		view, err = s.userView(ctx, user, month)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule saved",
		zap.String("month", ym.String()),
		zap.String("user_id", caller.UserID))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventScheduleSaved,
		Month:   ym.String(),
		Actor:   callerActor(caller),
		Payload: events.ScheduleSavedPayload{UserIDs: []string{caller.UserID}},
	})
	return view, nil
}

// GetAllSchedule returns every user's days for the month. Any authenticated
// caller may read it.
func (s *ScheduleService) GetAllSchedule(ctx context.Context, caller domain.Caller, monthDate time.Time) (*domain.ScheduleView, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	ym := domain.YearMonthOf(monthDate)

	var view *domain.ScheduleView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		month, err := s.registry.GetOrCreate(ctx, ym)
		if err != nil {
			return err
		}
		view, err = s.aggregate(ctx, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SaveAllSchedule overwrites the whole month. Users missing from
// submissions lose every entry they had in the month.
func (s *ScheduleService) SaveAllSchedule(ctx context.Context, caller domain.Caller, monthDate time.Time, submissions []domain.UserSubmission) (*domain.ScheduleView, error) {
	if err := auth.RequireRole(caller, managerRoles...); err != nil {
		return nil, err
	}
	ym := domain.YearMonthOf(monthDate)

	reconciled := make([][]domain.DayStatus, len(submissions))
	seen := make(map[string]struct{}, len(submissions))
	userIDs := make([]string, 0, len(submissions))
	for i, sub := range submissions {
		if sub.UserID == "" {
			return nil, apperrors.NewValidationError("user id is required", map[string]any{"index": i})
		}
		if _, dup := seen[sub.UserID]; dup {
			return nil, apperrors.NewValidationError("user submitted more than once", map[string]any{"user_id": sub.UserID})
		}
		seen[sub.UserID] = struct{}{}
		userIDs = append(userIDs, sub.UserID)

		days, err := schedule.Reconcile(sub.Days, ym)
		if err != nil {
			return nil, err
		}
		reconciled[i] = days
	}

	var view *domain.ScheduleView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		month, err := s.registry.GetOrCreateLocked(ctx, ym)
		if err != nil {
			return err
		}
		if month.Approved {
			return apperrors.NewMonthLocked(ym.String())
		}
		if _, err := s.entries.DeleteByMonth(ctx, month.ID); err != nil {
			return err
		}
		for i, sub := range submissions {
			if _, err := s.loadUser(ctx, sub.UserID); err != nil {
				return err
			}
			if err := s.entries.Insert(ctx, schedule.ToEntries(reconciled[i], sub.UserID, month.ID)); err != nil {
				return err
			}
		}
		view, err = s.aggregate(ctx, month)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("whole month schedule saved",
		zap.String("month", ym.String()),
		zap.Int("users", len(submissions)),
		zap.String("actor", caller.UserID))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventScheduleSaved,
		Month:   ym.String(),
		Actor:   callerActor(caller),
		Payload: events.ScheduleSavedPayload{UserIDs: userIDs, WholeMonth: true},
	})
	return view, nil
}

// SetApproval approves or unapproves the month and records the caller as
// approver. Approved months reject saves until unapproved.
func (s *ScheduleService) SetApproval(ctx context.Context, caller domain.Caller, monthDate time.Time, approved bool) (*domain.ScheduleView, error) {
	if err := auth.RequireRole(caller, managerRoles...); err != nil {
		return nil, err
	}
	ym := domain.YearMonthOf(monthDate)

	var view *domain.ScheduleView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		month, err := s.registry.GetOrCreateLocked(ctx, ym)
		if err != nil {
			return err
		}
		month, err = s.registry.SetApproval(ctx, month, approved, caller.UserID)
		if err != nil {
			return err
		}
		view, err = s.aggregate(ctx, month)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, ym, approved); err != nil {
		s.logger.Warn("approval cache update failed", zap.String("month", ym.String()), zap.Error(err))
		if err := s.cache.Invalidate(ctx, ym); err != nil {
			s.logger.Warn("approval cache invalidation failed", zap.String("month", ym.String()), zap.Error(err))
		}
	}
	s.logger.Info("schedule approval changed",
		zap.String("month", ym.String()),
		zap.Bool("approved", approved),
		zap.String("actor", caller.UserID))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventScheduleApprovalChanged,
		Month:   ym.String(),
		Actor:   callerActor(caller),
		Payload: events.ScheduleApprovalChangedPayload{Approved: approved},
	})
	return view, nil
}

// IsApproved reports the month's approved flag; a month never touched is not
// approved and is not created by asking.
func (s *ScheduleService) IsApproved(ctx context.Context, caller domain.Caller, monthDate time.Time) (bool, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return false, err
	}
	ym := domain.YearMonthOf(monthDate)

	approved, found, err := s.cache.Get(ctx, ym)
	if err != nil {
		s.logger.Warn("approval cache read failed", zap.String("month", ym.String()), zap.Error(err))
	} else if found {
		return approved, nil
	}

	month, err := s.registry.Find(ctx, ym)
	if apperrors.HasCode(err, apperrors.CodeMonthNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// SetApproval may have committed and cached a newer value since Find.
	if err := s.cache.SetIfAbsent(ctx, ym, month.Approved); err != nil {
		s.logger.Warn("approval cache fill failed", zap.String("month", ym.String()), zap.Error(err))
	}
	return month.Approved, nil
}

func (s *ScheduleService) replaceDays(ctx context.Context, userID, monthID string, days []domain.DayStatus) error {
	if _, err := s.entries.DeleteByUserAndMonth(ctx, userID, monthID); err != nil {
		return err
	}
	return s.entries.Insert(ctx, schedule.ToEntries(days, userID, monthID))
}

func (s *ScheduleService) userView(ctx context.Context, user *domain.User, month *domain.Month) (*domain.ScheduleView, error) {
	entries, err := s.entries.ListByUserAndMonth(ctx, user.ID, month.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ScheduleView{
		Month:    month.YearMonth(),
		Approved: month.Approved,
		Users:    []domain.UserSchedule{schedule.BuildView(user, entries)},
	}, nil
}

func (s *ScheduleService) aggregate(ctx context.Context, month *domain.Month) (*domain.ScheduleView, error) {
	entries, err := s.entries.ListByMonth(ctx, month.ID)
	if err != nil {
		return nil, err
	}

	groups := schedule.GroupByUser(entries)
	users := make([]domain.UserSchedule, 0, len(groups))
	for _, g := range groups {
		user, err := s.users.GetByID(ctx, g.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			user = &domain.User{ID: g.UserID}
		} else if err != nil {
			return nil, err
		}
		users = append(users, schedule.BuildView(user, g.Entries))
	}

	return &domain.ScheduleView{
		Month:    month.YearMonth(),
		Approved: month.Approved,
		Users:    users,
	}, nil
}

func (s *ScheduleService) loadUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUserNotFound(id)
	}
	return user, err
}

func (s *ScheduleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func callerActor(caller domain.Caller) events.Actor {
	return events.Actor{UserID: caller.UserID, Username: caller.Username}
}
