package request

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"budget-api/internal/lib/api/response"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Bind decodes the JSON body into v and validates its struct tags. On failure
// the error response is already written and Bind returns the cause.
func Bind(w http.ResponseWriter, r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			response.Error(w, r, http.StatusBadRequest, "empty request body")
			return err
		}
		response.Error(w, r, http.StatusBadRequest, "invalid JSON body")
		return err
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationErrors(w, r, verrs)
			return err
		}
		response.Error(w, r, http.StatusBadRequest, "invalid request")
		return err
	}

	return nil
}
