package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestBind(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		errPart string
	}{
		{"valid", `{"name":"Alfa","email":"a@alfa.com"}`, false, ""},
		{"empty body", ``, true, "empty request body"},
		{"broken json", `{"name":`, true, "invalid JSON body"},
		{"bad email", `{"name":"Alfa","email":"nope"}`, true, "field Email must be a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			var p payload
			err := Bind(rr, req, &p)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Alfa", p.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.errPart)
		})
	}
}
