package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"budget-api/internal/service"
	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: true, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string, errs ...string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: false, Message: msg, Errors: errs})
}

// ValidationErrors renders request struct tag failures.
func ValidationErrors(w http.ResponseWriter, r *http.Request, errs validator.ValidationErrors) {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s must be a UUID", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", e.Field()))
		}
	}

	Error(w, r, http.StatusBadRequest, "invalid request", msgs...)
}

// Status maps an error returned by the service layer to an HTTP status and a
// client-facing message. Unknown errors are internal.
func Status(err error) (int, string) {
	var (
		se *calculate.SchemaError
		ve *calculate.ValidationError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation failed"
	case errors.As(err, &se):
		return http.StatusBadRequest, "invalid template schema"
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid budget status"
	case errors.Is(err, storage.ErrTemplateNotFound):
		return http.StatusNotFound, "template not found"
	case errors.Is(err, storage.ErrBudgetNotFound):
		return http.StatusNotFound, "budget not found"
	case errors.Is(err, storage.ErrCompanyNotFound):
		return http.StatusNotFound, "company not found"
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return http.StatusConflict, "invalid status transition"
	case errors.Is(err, service.ErrBudgetClosed):
		return http.StatusConflict, "budget is closed for changes"
	case errors.Is(err, storage.ErrVersionConflict), errors.Is(err, storage.ErrBudgetLocked):
		return http.StatusConflict, "budget was modified concurrently, reload and retry"
	case errors.Is(err, storage.ErrCompanyExists):
		return http.StatusConflict, "company already exists"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// FromError renders err with the envelope and status it maps to. Calculation
// failures list every problem in errors.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := Status(err)

	var (
		se *calculate.SchemaError
		ve *calculate.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		Error(w, r, status, msg, ve.Messages()...)
	case errors.As(err, &se):
		Error(w, r, status, msg, se.Problems...)
	default:
		Error(w, r, status, msg)
	}
}

// Fail logs err at a level matching its status and renders it. Client errors
// are not the server's problem and stay at info.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	if status, _ := Status(err); status >= http.StatusInternalServerError {
		log.Error(msg, slog.String("error", err.Error()))
	} else {
		log.Info(msg, slog.String("error", err.Error()))
	}
	FromError(w, r, err)
}
