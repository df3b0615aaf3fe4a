package domain

import (
	"fmt"
	"time"
)

// Status classifies one day of a user's schedule.
type Status string

const (
	StatusWorking   Status = "WORKING"
	StatusOff       Status = "OFF"
	StatusVacation  Status = "VACATION"
	StatusSickLeave Status = "SICK_LEAVE"
)

// DefaultStatus is applied to days missing from a submission.
const DefaultStatus = StatusOff

// Valid reports whether the status belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusWorking, StatusOff, StatusVacation, StatusSickLeave:
		return true
	}
	return false
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf extracts the year and month of t, ignoring the day.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether date falls inside the month.
func (ym YearMonth) Contains(date time.Time) bool {
	return date.Year() == ym.Year && date.Month() == ym.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Month is the persisted scheduling state of one calendar month.
type Month struct {
	ID         string
	Year       int
	Month      int
	Approved   bool
	ApprovedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// YearMonth returns the month key.
func (m *Month) YearMonth() YearMonth {
	return YearMonth{Year: m.Year, Month: time.Month(m.Month)}
}

// DayEntry is one user's status for one date within a Month.
type DayEntry struct {
	ID      string
	UserID  string
	MonthID string
	Date    time.Time
	Status  Status
}

// DayStatus pairs a calendar date with a status.
type DayStatus struct {
	Date   time.Time
	Status Status
}

// UserSchedule is one user's days inside a month view.
type UserSchedule struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	Position  string
	Days      []DayStatus
}

// ScheduleView is the aggregate read model of a month.
type ScheduleView struct {
	Month    YearMonth
	Approved bool
	Users    []UserSchedule
}

// UserSubmission carries one user's submitted days for a whole-month save.
type UserSubmission struct {
	UserID string
	Days   []DayStatus
}
