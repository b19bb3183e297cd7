package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"arena/internal/domain/apperr"
)

// validate checks request bodies; tags are declared on the request structs.
var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err.Error())
	}
}

// writeDetail writes the {"detail": "..."} error body.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeDetail(w, http.StatusInternalServerError, "internal server error")
}

// writeError maps an orchestrator or projection error to a response.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		internalError(w, err)
		return
	}
	switch appErr.Kind {
	case apperr.KindNotFound:
		writeDetail(w, http.StatusNotFound, appErr.Detail)
	case apperr.KindInvalidInput, apperr.KindInvalidState, apperr.KindConflict:
		writeDetail(w, http.StatusBadRequest, appErr.Detail)
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeBody decodes and validates a JSON body. Malformed JSON and failed
// field rules both answer 422.
// POST: Returns false after writing the error response
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return false
	}
	return true
}

// validationDetail renders validator errors as "field: rule" pairs.
func validationDetail(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

// pathID reads a UUID path value; label names the entity in the 400 detail.
// POST: Returns false after writing "Invalid <label> ID"
func pathID(w http.ResponseWriter, r *http.Request, label string) (string, bool) {
	return checkID(w, r.PathValue("id"), label)
}

func checkID(w http.ResponseWriter, id, label string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return "", false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when absent.
// POST: Returns false after writing a 422 for a non-integer value
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// handleRoot handles GET /
func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Gym API is Live!"})
}

// handleVersion handles GET /version for client-side update gating.
func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"min_app_version": settings.MinAppVersion,
		"api_version":     settings.APIVersion,
	})
}
