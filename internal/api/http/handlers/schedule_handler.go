package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-schedule/internal/api/dto"
	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/calendar"
	"github.com/spec-kit/staff-schedule/internal/domain"
	"github.com/spec-kit/staff-schedule/internal/service"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// ScheduleHandler exposes the month schedule endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// GetMine handles GET /api/schedule/my.
func (h *ScheduleHandler) GetMine(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	view, err := h.schedules.GetMySchedule(c.UserContext(), caller(c), month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(view)})
}

// SaveMine handles POST /api/schedule/my.
func (h *ScheduleHandler) SaveMine(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	var req dto.MyScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	days, err := dto.ToDayStatuses(req.Days)
	if err != nil {
		return err
	}

	view, err := h.schedules.SaveMySchedule(c.UserContext(), caller(c), month, days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(view)})
}

// GetAll handles GET /api/schedule/all.
func (h *ScheduleHandler) GetAll(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	view, err := h.schedules.GetAllSchedule(c.UserContext(), caller(c), month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(view)})
}

// SaveAll handles POST /api/schedule/all. Users left out of the payload lose
// their entries for the month.
func (h *ScheduleHandler) SaveAll(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	var req dto.FullScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	submissions, err := dto.ToSubmissions(req)
	if err != nil {
		return err
	}

	view, err := h.schedules.SaveAllSchedule(c.UserContext(), caller(c), month, submissions)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(view)})
}

// SetApproval handles POST /api/schedule/approve.
func (h *ScheduleHandler) SetApproval(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	approved := true
	if len(c.Body()) > 0 {
		var req dto.ApprovalRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
		if req.Approved != nil {
			approved = *req.Approved
		}
	}

	view, err := h.schedules.SetApproval(c.UserContext(), caller(c), month, approved)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewScheduleResponse(view)})
}

// Status handles GET /api/schedule/status.
func (h *ScheduleHandler) Status(c *fiber.Ctx) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}
	approved, err := h.schedules.IsApproved(c.UserContext(), caller(c), month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ApprovalStatusResponse{
		Month:    domain.YearMonthOf(month).String(),
		Approved: approved,
	}})
}

func monthParam(c *fiber.Ctx) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError("month query parameter is required", nil)
	}
	month, err := calendar.ParseMonth(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(err.Error(), map[string]any{"month": raw})
	}
	return month, nil
}

func caller(c *fiber.Ctx) domain.Caller {
	caller, _ := auth.CallerFromContext(c)
	return caller
}
