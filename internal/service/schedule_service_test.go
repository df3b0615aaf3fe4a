package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-schedule/internal/calendar"
	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/events"
	"github.com/spec-kit/staff-schedule/internal/repository"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

var feb2024 = day(2024, time.February, 17)

func statusesByDate(days []domain.DayStatus) map[string]domain.Status {
	out := make(map[string]domain.Status, len(days))
	for _, d := range days {
		out[calendar.Key(d.Date)] = d.Status
	}
	return out
}

func requireAscending(t *testing.T, days []domain.DayStatus) {
	t.Helper()
	for i := 1; i < len(days); i++ {
		require.True(t, days[i-1].Date.Before(days[i].Date), "days out of order at %d", i)
	}
}

func TestSaveMyScheduleLeapFebruary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "ulla", domain.RoleStaff)

	view, err := f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.February, 5), Status: domain.StatusVacation},
	})
	require.NoError(t, err)
	require.False(t, view.Approved)
	require.Equal(t, domain.YearMonth{Year: 2024, Month: time.February}, view.Month)
	require.Len(t, view.Users, 1)
	require.Equal(t, staff.UserID, view.Users[0].UserID)
	require.Equal(t, "barista", view.Users[0].Position)

	days := view.Users[0].Days
	require.Len(t, days, 29)
	requireAscending(t, days)
	for key, status := range statusesByDate(days) {
		if key == "2024-02-05" {
			require.Equal(t, domain.StatusVacation, status)
			continue
		}
		require.Equal(t, domain.StatusOff, status, key)
	}

	fetched, err := f.schedule.GetMySchedule(ctx, staff, day(2024, time.February, 1))
	require.NoError(t, err)
	require.Equal(t, statusesByDate(days), statusesByDate(fetched.Users[0].Days))
	requireAscending(t, fetched.Users[0].Days)
}

func TestSaveMyScheduleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "vera", domain.RoleStaff)
	submission := []domain.DayStatus{
		{Date: day(2024, time.April, 1), Status: domain.StatusWorking},
		{Date: day(2024, time.April, 30), Status: domain.StatusSickLeave},
	}

	first, err := f.schedule.SaveMySchedule(ctx, staff, day(2024, time.April, 1), submission)
	require.NoError(t, err)
	second, err := f.schedule.SaveMySchedule(ctx, staff, day(2024, time.April, 1), submission)
	require.NoError(t, err)

	require.Len(t, second.Users[0].Days, 30)
	require.Equal(t, statusesByDate(first.Users[0].Days), statusesByDate(second.Users[0].Days))

	month, err := f.store.Months().GetByYearMonth(ctx, 2024, 4)
	require.NoError(t, err)
	entries, err := f.store.DayEntries().ListByMonth(ctx, month.ID)
	require.NoError(t, err)
	require.Len(t, entries, 30)
}

func TestSaveMyScheduleRejectsOutOfRangeDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "wanda", domain.RoleStaff)

	_, err := f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.February, 2), Status: domain.StatusWorking},
		{Date: day(2024, time.March, 1), Status: domain.StatusWorking},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRangeDate))

	view, err := f.schedule.GetMySchedule(ctx, staff, feb2024)
	require.NoError(t, err)
	require.Empty(t, view.Users[0].Days)
	require.Empty(t, f.published.types())
}

func TestGetMyScheduleWithoutEntries(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "xena", domain.RoleCafeAdmin)

	view, err := f.schedule.GetMySchedule(context.Background(), admin, feb2024)
	require.NoError(t, err)
	require.Len(t, view.Users, 1)
	require.Equal(t, "xena", view.Users[0].Username)
	require.Empty(t, view.Users[0].Days)
}

func TestApprovedMonthIsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "yusuf", domain.RoleCafeAdmin)
	staff := f.account(t, "zora", domain.RoleStaff)

	_, err := f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.February, 9), Status: domain.StatusWorking},
	})
	require.NoError(t, err)

	view, err := f.schedule.SetApproval(ctx, manager, feb2024, true)
	require.NoError(t, err)
	require.True(t, view.Approved)

	_, err = f.schedule.SaveMySchedule(ctx, staff, feb2024, nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeMonthLocked))

	_, err = f.schedule.SaveAllSchedule(ctx, manager, feb2024, nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeMonthLocked))

	mine, err := f.schedule.GetMySchedule(ctx, staff, feb2024)
	require.NoError(t, err)
	require.True(t, mine.Approved)
	require.Equal(t, domain.StatusWorking, statusesByDate(mine.Users[0].Days)["2024-02-09"])

	_, err = f.schedule.SetApproval(ctx, manager, feb2024, false)
	require.NoError(t, err)
	saved, err := f.schedule.SaveMySchedule(ctx, staff, feb2024, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOff, statusesByDate(saved.Users[0].Days)["2024-02-09"])
}

func TestInvalidSubmissionToLockedMonthReportsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "yusuf", domain.RoleCafeAdmin)
	staff := f.account(t, "zora", domain.RoleStaff)

	_, err := f.schedule.SetApproval(ctx, manager, feb2024, true)
	require.NoError(t, err)

	_, err = f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.March, 1), Status: domain.StatusWorking},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRangeDate))

	_, err = f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.February, 1), Status: domain.StatusWorking},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeMonthLocked))
}

func TestSetApprovalRecordsApprover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "anton", domain.RoleCafeAdmin)

	_, err := f.schedule.SetApproval(ctx, manager, feb2024, true)
	require.NoError(t, err)

	month, err := f.store.Months().GetByYearMonth(ctx, 2024, 2)
	require.NoError(t, err)
	require.True(t, month.Approved)
	require.NotNil(t, month.ApprovedBy)
	require.Equal(t, manager.UserID, *month.ApprovedBy)
	require.Equal(t, []events.EventType{events.EventScheduleApprovalChanged}, f.published.types())
}

func TestSaveAllScheduleWipesOmittedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "bernd", domain.RoleCafeAdmin)
	a := f.account(t, "clara", domain.RoleStaff)
	b := f.account(t, "dieter", domain.RoleStaff)

	for _, caller := range []domain.Caller{a, b} {
		_, err := f.schedule.SaveMySchedule(ctx, caller, feb2024, []domain.DayStatus{
			{Date: day(2024, time.February, 1), Status: domain.StatusWorking},
		})
		require.NoError(t, err)
	}

	view, err := f.schedule.SaveAllSchedule(ctx, manager, feb2024, []domain.UserSubmission{{
		UserID: a.UserID,
		Days:   []domain.DayStatus{{Date: day(2024, time.February, 2), Status: domain.StatusSickLeave}},
	}})
	require.NoError(t, err)
	require.Len(t, view.Users, 1)
	require.Equal(t, a.UserID, view.Users[0].UserID)
	require.Len(t, view.Users[0].Days, 29)
	got := statusesByDate(view.Users[0].Days)
	require.Equal(t, domain.StatusOff, got["2024-02-01"])
	require.Equal(t, domain.StatusSickLeave, got["2024-02-02"])

	bView, err := f.schedule.GetMySchedule(ctx, b, feb2024)
	require.NoError(t, err)
	require.Empty(t, bView.Users[0].Days)

	all, err := f.schedule.GetAllSchedule(ctx, b, feb2024)
	require.NoError(t, err)
	require.Len(t, all.Users, 1)
}

func TestSaveAllScheduleUnknownUserRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "emma", domain.RoleCafeAdmin)
	staff := f.account(t, "fiete", domain.RoleStaff)

	_, err := f.schedule.SaveMySchedule(ctx, staff, feb2024, []domain.DayStatus{
		{Date: day(2024, time.February, 14), Status: domain.StatusVacation},
	})
	require.NoError(t, err)

	_, err = f.schedule.SaveAllSchedule(ctx, manager, feb2024, []domain.UserSubmission{
		{UserID: staff.UserID},
		{UserID: uuid.NewString()},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))

	view, err := f.schedule.GetMySchedule(ctx, staff, feb2024)
	require.NoError(t, err)
	require.Len(t, view.Users[0].Days, 29)
	require.Equal(t, domain.StatusVacation, statusesByDate(view.Users[0].Days)["2024-02-14"])
}

func TestSaveAllScheduleValidatesUpFront(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "gerda", domain.RoleCafeAdmin)
	staff := f.account(t, "hanno", domain.RoleStaff)

	_, err := f.schedule.SaveAllSchedule(ctx, manager, feb2024, []domain.UserSubmission{
		{UserID: staff.UserID},
		{UserID: staff.UserID},
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.schedule.SaveAllSchedule(ctx, manager, feb2024, []domain.UserSubmission{{
		UserID: staff.UserID,
		Days:   []domain.DayStatus{{Date: day(2024, time.January, 31), Status: domain.StatusOff}},
	}})
	require.True(t, apperrors.HasCode(err, apperrors.CodeOutOfRangeDate))

	_, err = f.store.Months().GetByYearMonth(ctx, 2024, 2)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestManagerOperationsRequireCafeAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "ida", domain.RoleStaff)
	userAdmin := f.account(t, "jonas", domain.RoleUserAdmin, domain.RoleStaff)

	for _, caller := range []domain.Caller{staff, userAdmin} {
		_, err := f.schedule.SaveAllSchedule(ctx, caller, feb2024, nil)
		require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

		_, err = f.schedule.SetApproval(ctx, caller, feb2024, true)
		require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	}

	approved, err := f.schedule.IsApproved(ctx, staff, feb2024)
	require.NoError(t, err)
	require.False(t, approved)
}

func TestOwnScheduleRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userAdmin := f.account(t, "karl", domain.RoleUserAdmin)

	_, err := f.schedule.GetMySchedule(ctx, userAdmin, feb2024)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = f.schedule.SaveMySchedule(ctx, userAdmin, feb2024, nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.schedule.GetAllSchedule(ctx, userAdmin, feb2024)
	require.NoError(t, err)

	_, err = f.schedule.GetAllSchedule(ctx, domain.Caller{}, feb2024)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestIsApprovedDoesNotCreateMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "lena", domain.RoleStaff)

	approved, err := f.schedule.IsApproved(ctx, staff, day(2030, time.June, 1))
	require.NoError(t, err)
	require.False(t, approved)

	_, err = f.store.Months().GetByYearMonth(ctx, 2030, 6)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, cached, err := f.cache.Get(ctx, domain.YearMonth{Year: 2030, Month: time.June})
	require.NoError(t, err)
	require.False(t, cached)
}

func TestIsApprovedUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "mira", domain.RoleCafeAdmin)
	ym := domain.YearMonth{Year: 2024, Month: time.February}

	_, err := f.schedule.SetApproval(ctx, manager, feb2024, true)
	require.NoError(t, err)
	cached, found, err := f.cache.Get(ctx, ym)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, cached)

	// the cache answers even if storage disagrees
	require.NoError(t, f.cache.Set(ctx, ym, false))
	approved, err := f.schedule.IsApproved(ctx, manager, feb2024)
	require.NoError(t, err)
	require.False(t, approved)

	require.NoError(t, f.cache.Invalidate(ctx, ym))
	approved, err = f.schedule.IsApproved(ctx, manager, feb2024)
	require.NoError(t, err)
	require.True(t, approved)
}

// pausingMonths parks the next GetByYearMonth after its read until release
// is closed.
type pausingMonths struct {
	repository.MonthRepository
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (m *pausingMonths) GetByYearMonth(ctx context.Context, year, month int) (*domain.Month, error) {
	found, err := m.MonthRepository.GetByYearMonth(ctx, year, month)
	if m.armed.CompareAndSwap(true, false) {
		close(m.read)
		<-m.release
	}
	return found, err
}

func TestIsApprovedFillDoesNotOverwriteNewerApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "mira", domain.RoleCafeAdmin)
	staff := f.account(t, "lena", domain.RoleStaff)

	months := &pausingMonths{
		MonthRepository: f.store.Months(),
		read:            make(chan struct{}),
		release:         make(chan struct{}),
	}
	svc := NewScheduleService(ScheduleDependencies{
		Transactor:   f.store,
		UserRepo:     f.store.Users(),
		MonthRepo:    months,
		DayEntryRepo: f.store.DayEntries(),
		Cache:        f.cache,
	})
	_, err := svc.GetAllSchedule(ctx, manager, feb2024)
	require.NoError(t, err)

	type result struct {
		approved bool
		err      error
	}
	inflight := make(chan result, 1)
	months.armed.Store(true)
	go func() {
		approved, err := svc.IsApproved(ctx, staff, feb2024)
		inflight <- result{approved: approved, err: err}
	}()

	// the status read has seen the unapproved row; approval commits before it
	// fills the cache
	<-months.read
	_, approveErr := svc.SetApproval(ctx, manager, feb2024, true)
	close(months.release)
	require.NoError(t, approveErr)

	stale := <-inflight
	require.NoError(t, stale.err)
	require.False(t, stale.approved)

	approved, err := svc.IsApproved(ctx, staff, feb2024)
	require.NoError(t, err)
	require.True(t, approved)

	_, err = svc.SaveMySchedule(ctx, staff, feb2024, nil)
	require.True(t, apperrors.HasCode(err, apperrors.CodeMonthLocked))
}

func TestGetAllScheduleGroupsUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.account(t, "nora", domain.RoleCafeAdmin)
	a := f.account(t, "otto", domain.RoleStaff)
	b := f.account(t, "paula", domain.RoleStaff)

	_, err := f.schedule.SaveAllSchedule(ctx, manager, feb2024, []domain.UserSubmission{
		{UserID: a.UserID, Days: []domain.DayStatus{{Date: day(2024, time.February, 3), Status: domain.StatusWorking}}},
		{UserID: b.UserID, Days: []domain.DayStatus{{Date: day(2024, time.February, 4), Status: domain.StatusVacation}}},
	})
	require.NoError(t, err)

	first, err := f.schedule.GetAllSchedule(ctx, a, feb2024)
	require.NoError(t, err)
	second, err := f.schedule.GetAllSchedule(ctx, a, feb2024)
	require.NoError(t, err)

	require.Len(t, first.Users, 2)
	for i := range first.Users {
		require.Equal(t, first.Users[i].UserID, second.Users[i].UserID)
		require.Len(t, first.Users[i].Days, 29)
		requireAscending(t, first.Users[i].Days)
	}
	require.Equal(t, []events.EventType{events.EventScheduleSaved}, f.published.types())
}

func TestConcurrentFirstTouchCreatesOneMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.account(t, "quirin", domain.RoleStaff)

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := f.schedule.GetAllSchedule(ctx, staff, feb2024)
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-errs)
	}

	month, err := f.store.Months().GetByYearMonth(ctx, 2024, 2)
	require.NoError(t, err)
	again, err := NewMonthRegistry(f.store.Months()).GetOrCreate(ctx, domain.YearMonthOf(feb2024))
	require.NoError(t, err)
	require.Equal(t, month.ID, again.ID)
}
