// Package api provides the HTTP API handlers for bhava.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/bhava/internal/landmark"
	"github.com/ayusman/bhava/internal/logging"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New(validator.WithRequiredStructEnabled())
	log      = logging.Component("api")
)

// maxBodyBytes bounds request bodies. A refined face is well under 64 KiB.
const maxBodyBytes = 1 << 20

// errorResponse represents an error response.
type errorResponse struct {
	Error string `json:"error"`
}

// faceRequest is the landmark payload shared by classify and fixture
// creation.
type faceRequest struct {
	Width     int                `json:"width" validate:"gt=0"`
	Height    int                `json:"height" validate:"gt=0"`
	Landmarks []landmark.Point3D `json:"landmarks" validate:"min=468"`
}

func (r faceRequest) face() landmark.Face {
	return landmark.Face{Points: r.Landmarks}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.WithError(err).Warn("Failed to encode response")
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errInvalidJSON marks a body that could not be decoded.
var errInvalidJSON = errors.New("invalid JSON")

// decode reads a JSON body into v and validates it. Decoding failures wrap
// errInvalidJSON; validation failures are returned as descriptive errors.
func decode(r *http.Request, w http.ResponseWriter, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return validateRequest(v)
}

func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			return fmt.Errorf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%s failed %s", field, fe.Tag())
	}
	return err
}

// writeDecodeError maps a decode error to 400 for malformed bodies and 422
// for well-formed bodies that fail validation.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidJSON) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}
