// Package schedule turns submitted day statuses into complete month records
// and assembles stored entries back into per-user views.
package schedule

import (
	"sort"

	"github.com/spec-kit/staff-schedule/internal/calendar"
	"github.com/spec-kit/staff-schedule/internal/domain"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// Reconcile completes a submission into one status per day of ym, ascending.
// Days not submitted get domain.DefaultStatus; for a date submitted more than
// once the last status wins. Nothing is returned unless every date lies in
// ym and every status is known.
func Reconcile(submitted []domain.DayStatus, ym domain.YearMonth) ([]domain.DayStatus, error) {
	if err := Validate(submitted, ym); err != nil {
		return nil, err
	}

	days, err := calendar.DaysInMonth(ym.Year, ym.Month)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"month": ym.String()})
	}

	byDate := make(map[string]domain.Status, len(submitted))
	for _, d := range submitted {
		byDate[calendar.Key(d.Date)] = d.Status
	}

	out := make([]domain.DayStatus, 0, len(days))
	for _, day := range days {
		status, ok := byDate[calendar.Key(day)]
		if !ok {
			status = domain.DefaultStatus
		}
		out = append(out, domain.DayStatus{Date: day, Status: status})
	}
	return out, nil
}

// Validate checks a submission against ym without building anything. Date
// range violations are reported before unknown statuses.
func Validate(submitted []domain.DayStatus, ym domain.YearMonth) error {
	for _, d := range submitted {
		if !ym.Contains(d.Date) {
			return apperrors.NewOutOfRangeDate(d.Date, ym.String())
		}
	}
	for _, d := range submitted {
		if !d.Status.Valid() {
			return apperrors.NewValidationError("unknown day status", map[string]any{
				"date":   calendar.Key(d.Date),
				"status": string(d.Status),
			})
		}
	}
	return nil
}

// ToEntries tags reconciled days with their owner and month.
func ToEntries(days []domain.DayStatus, userID, monthID string) []domain.DayEntry {
	entries := make([]domain.DayEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, domain.DayEntry{
			UserID:  userID,
			MonthID: monthID,
			Date:    calendar.Normalize(d.Date),
			Status:  d.Status,
		})
	}
	return entries
}

// BuildView assembles one user's schedule from stored entries. Days are
// sorted by date whatever order storage returned them in.
func BuildView(user *domain.User, entries []domain.DayEntry) domain.UserSchedule {
	view := domain.UserSchedule{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Position:  user.Position,
		Days:      make([]domain.DayStatus, 0, len(entries)),
	}
	for _, e := range entries {
		view.Days = append(view.Days, domain.DayStatus{Date: calendar.Normalize(e.Date), Status: e.Status})
	}
	sort.SliceStable(view.Days, func(i, j int) bool {
		return view.Days[i].Date.Before(view.Days[j].Date)
	})
	return view
}

// Group is the entries of one user.
type Group struct {
	UserID  string
	Entries []domain.DayEntry
}

// GroupByUser splits entries per user, keeping users in order of first
// appearance.
func GroupByUser(entries []domain.DayEntry) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(groups)
			index[e.UserID] = i
			groups = append(groups, Group{UserID: e.UserID})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
