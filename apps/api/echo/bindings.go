package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/livesync"
	"github.com/Abraham77967/Taskmate-Web/core/timeutil"
	"github.com/Abraham77967/Taskmate-Web/core/viewmodel"
)

type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Token string        `json:"token"`
		User  core.Identity `json:"user"`
	}

	MeResponse struct {
		User      core.Identity  `json:"user"`
		SyncState livesync.State `json:"sync_state"`
	}

	CreatedResponse struct {
		ID string `json:"id"`
	}

	// HomeworkRequest is the homework form as submitted. DueDate is YYYY-MM-DD or RFC 3339.
	HomeworkRequest struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ClassID     string `json:"classId"`
		DueDate     string `json:"dueDate"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
	}
)

func (req HomeworkRequest) dueDate(loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(req.DueDate) == "" {
		return time.Time{}, nil // reported as required by validation
	}
	due, err := timeutil.ParseDueDate(req.DueDate, loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(core.ErrInvalidInput, core.FieldError{Field: "dueDate", Error: "dueDate must be a valid date"})
	}
	return due, nil
}

func (req HomeworkRequest) NewHomework(loc *time.Location) (homework.NewHomework, error) {
	due, err := req.dueDate(loc)
	if err != nil {
		return homework.NewHomework{}, err
	}
	return homework.NewHomework{
		Title:       req.Title,
		Description: req.Description,
		ClassID:     req.ClassID,
		DueDate:     due,
		Priority:    homework.Priority(req.Priority),
	}, nil
}

func (req HomeworkRequest) UpdateHomework(loc *time.Location) (homework.UpdateHomework, error) {
	due, err := req.dueDate(loc)
	if err != nil {
		return homework.UpdateHomework{}, err
	}
	return homework.UpdateHomework{
		Title:       req.Title,
		Description: req.Description,
		ClassID:     req.ClassID,
		DueDate:     due,
		Priority:    homework.Priority(req.Priority),
		Status:      homework.Status(req.Status),
	}, nil
}

// bindFilter reads the class_id and status query params.
func bindFilter(ctx echo.Context) (viewmodel.Filter, error) {
	f := viewmodel.Filter{
		ClassID: strings.TrimSpace(ctx.QueryParam("class_id")),
		Status:  homework.Status(core.CleanString(ctx.QueryParam("status"), true /* lower */)),
	}
	if f.Status == "" {
		return f, nil
	}
	for _, status := range homework.AllStatuses {
		if f.Status == status {
			return f, nil
		}
	}
	return f, core.NewValidationError(core.ErrInvalidInput, core.FieldError{Field: "status", Error: "status must be one of [pending in_progress completed]"})
}
