package dto

import (
	"time"

	"github.com/spec-kit/staff-schedule/internal/calendar"
	"github.com/spec-kit/staff-schedule/internal/domain"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// ScheduleDay is one date and its status, date as YYYY-MM-DD.
type ScheduleDay struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// MyScheduleRequest payload for POST /api/schedule/my.
type MyScheduleRequest struct {
	Days []ScheduleDay `json:"days"`
}

// UserScheduleRequest is one user's part of a whole-month save.
type UserScheduleRequest struct {
	UserID string        `json:"user_id"`
	Days   []ScheduleDay `json:"days"`
}

// FullScheduleRequest payload for POST /api/schedule/all.
type FullScheduleRequest struct {
	UserSchedules []UserScheduleRequest `json:"user_schedules"`
}

// ApprovalRequest payload for POST /api/schedule/approve. A missing
// approved field means approve.
type ApprovalRequest struct {
	Approved *bool `json:"approved"`
}

// UserScheduleResponse is one user's month.
type UserScheduleResponse struct {
	UserID    string        `json:"user_id"`
	Username  string        `json:"username"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Position  string        `json:"position"`
	Days      []ScheduleDay `json:"days"`
}

// ScheduleResponse is a month view.
type ScheduleResponse struct {
	Month         string                 `json:"month"`
	Approved      bool                   `json:"approved"`
	UserSchedules []UserScheduleResponse `json:"user_schedules"`
}

// ApprovalStatusResponse answers GET /api/schedule/status.
type ApprovalStatusResponse struct {
	Month    string `json:"month"`
	Approved bool   `json:"approved"`
}

// ToDayStatuses parses submitted days. Statuses are checked later against
// the target month together with the dates.
func ToDayStatuses(days []ScheduleDay) ([]domain.DayStatus, error) {
	out := make([]domain.DayStatus, 0, len(days))
	for i, d := range days {
		date, err := time.Parse(calendar.DateLayout, d.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid date", map[string]any{
				"index": i,
				"date":  d.Date,
			})
		}
		out = append(out, domain.DayStatus{Date: date, Status: domain.Status(d.Status)})
	}
	return out, nil
}

// ToSubmissions parses a whole-month payload.
func ToSubmissions(req FullScheduleRequest) ([]domain.UserSubmission, error) {
	out := make([]domain.UserSubmission, 0, len(req.UserSchedules))
	for _, us := range req.UserSchedules {
		days, err := ToDayStatuses(us.Days)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.UserSubmission{UserID: us.UserID, Days: days})
	}
	return out, nil
}

// NewScheduleResponse renders a month view.
func NewScheduleResponse(view *domain.ScheduleView) ScheduleResponse {
	resp := ScheduleResponse{
		Month:         view.Month.String(),
		Approved:      view.Approved,
		UserSchedules: make([]UserScheduleResponse, 0, len(view.Users)),
	}
	for _, u := range view.Users {
		days := make([]ScheduleDay, 0, len(u.Days))
		for _, d := range u.Days {
			days = append(days, ScheduleDay{Date: calendar.Key(d.Date), Status: string(d.Status)})
		}
		resp.UserSchedules = append(resp.UserSchedules, UserScheduleResponse{
			UserID:    u.UserID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Position:  u.Position,
			Days:      days,
		})
	}
	return resp
}
