package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Error   string            `json:"error"`
}

func write(t *testing.T, dev bool, err error) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	NewTranslator(zap.NewNop(), dev).Write(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestTranslator(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantStatus  string
		wantMessage string
	}{
		{"validation", Validation("A report must have an image"), http.StatusBadRequest, "fail", "A report must have an image"},
		{"duplicate", Duplicate("jane@example.com"), http.StatusBadRequest, "fail", `Duplicate field value "jane@example.com". Please use another value`},
		{"authentication", Unauthenticated("Incorrect email or password"), http.StatusUnauthorized, "fail", "Incorrect email or password"},
		{"authorization", Forbidden("You do not have permission to perform this action"), http.StatusForbidden, "fail", "You do not have permission to perform this action"},
		{"not found", NotFound("No report found with that ID"), http.StatusNotFound, "fail", "No report found with that ID"},
		{"too many", TooManyRequests("slow down"), http.StatusTooManyRequests, "fail", "slow down"},
		{"wrapped operational", fmt.Errorf("handler: %w", NotFound("No user found with that ID")), http.StatusNotFound, "fail", "No user found with that ID"},
		{"internal", Internal("failed to create report", errors.New("conn reset")), http.StatusInternalServerError, "error", GenericMessage},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "error", GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := write(t, false, tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Empty(t, body.Error, "no detail outside development")
		})
	}
}

func TestTranslator_ValidationFields(t *testing.T) {
	fields := map[string]string{"email": "Invalid email format"}
	code, body := write(t, false, ValidationFields("Invalid input. email: Invalid email format", fields))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, fields, body.Errors)
}

func TestTranslator_DevelopmentDetail(t *testing.T) {
	code, body := write(t, true, Internal("failed to create report", errors.New("conn reset")))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "failed to create report", body.Message)
	assert.Contains(t, body.Error, "conn reset")
}

func TestFromAndIs(t *testing.T) {
	assert.True(t, Is(fmt.Errorf("wrap: %w", Forbidden("no")), KindAuthorization))
	assert.False(t, Is(errors.New("plain"), KindAuthorization))

	appErr := From(errors.New("plain"))
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.False(t, appErr.Operational())
}
