package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type newGameBody struct {
	Mode string `json:"mode" validate:"required,oneof=local ai remote"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
		code int
	}{
		{name: "valid", body: `{"mode":"ai"}`, ok: true},
		{name: "bad json", body: `{"mode":`, code: http.StatusBadRequest},
		{name: "missing", body: `{}`, code: http.StatusUnprocessableEntity},
		{name: "unknown mode", body: `{"mode":"online"}`, code: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var body newGameBody
			ok := DecodeAndValidate(rec, req, &body)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				return
			}
			require.Equal(t, tt.code, rec.Code)

			var resp ValidationErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.False(t, resp.Success)
			if tt.code == http.StatusUnprocessableEntity {
				require.Len(t, resp.Errors, 1)
				require.Contains(t, resp.Errors[0], "Mode")
			}
		})
	}
}

func TestValidationErrorsNil(t *testing.T) {
	require.Nil(t, ValidationErrors(nil))
	require.Nil(t, ValidateStruct(newGameBody{Mode: "local"}))
}
