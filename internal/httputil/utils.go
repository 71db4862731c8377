package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Validate is shared by every handler; validator caches struct metadata.
var Validate = validator.New()

func SendResponse(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func SendError(w http.ResponseWriter, code int, msg string) {
	SendResponse(w, code, NewBaseResponse(false, msg))
}

// ValidationErrors flattens a validator error into one message per field.
// It returns nil when err is nil.
func ValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	return lo.Map(verrs, func(item validator.FieldError, _ int) string {
		return item.Error()
	})
}

// ValidateStruct returns a filled response when s fails validation, or nil.
func ValidateStruct(s any) *ValidationErrorResponse {
	errs := ValidationErrors(Validate.Struct(s))
	if len(errs) == 0 {
		return nil
	}
	return &ValidationErrorResponse{
		BaseResponse: NewBaseResponse(false, "invalid body, validation failed"),
		Errors:       errs,
	}
}

// DecodeAndValidate reads a JSON body into dst and validates it. On failure
// the response has already been written.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		SendError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if resp := ValidateStruct(dst); resp != nil {
		SendResponse(w, http.StatusUnprocessableEntity, resp)
		return false
	}
	return true
}
