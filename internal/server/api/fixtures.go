package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ayusman/bhava/internal/emotion"
	"github.com/ayusman/bhava/internal/landmark"
	"github.com/ayusman/bhava/internal/store"
)

func init() {
	err := validate.RegisterValidation("emotion", func(fl validator.FieldLevel) bool {
		return emotion.Label(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(err)
	}
}

// FixtureHandler handles HTTP requests for recorded fixtures.
type FixtureHandler struct {
	store *store.Store
}

// NewFixtureHandler creates a new FixtureHandler with the given store.
func NewFixtureHandler(s *store.Store) *FixtureHandler {
	return &FixtureHandler{store: s}
}

// ServeHTTP routes /api/fixtures, /api/fixtures/{id} and
// /api/fixtures/{id}/thumbnail.
func (h *FixtureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/fixtures")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
	case "thumbnail":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.thumbnail(w, r, id)
		return
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type createFixtureRequest struct {
	faceRequest
	Name     string `json:"name" validate:"required"`
	Expected string `json:"expected" validate:"omitempty,emotion"`
}

type updateFixtureRequest struct {
	Name     string `json:"name" validate:"required"`
	Expected string `json:"expected" validate:"required,emotion"`
}

type fixtureResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Expected    emotion.Label      `json:"expected"`
	Display     string             `json:"display"`
	Classified  emotion.Label      `json:"classified,omitempty"`
	FrameWidth  int                `json:"frame_width"`
	FrameHeight int                `json:"frame_height"`
	Landmarks   []landmark.Point3D `json:"landmarks,omitempty"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

type listFixturesResponse struct {
	Fixtures []fixtureResponse `json:"fixtures"`
}

func toResponse(f *store.Fixture) fixtureResponse {
	return fixtureResponse{
		ID:          f.ID,
		Name:        f.Name,
		Expected:    f.Expected,
		Display:     f.Expected.Display(),
		FrameWidth:  f.FrameWidth,
		FrameHeight: f.FrameHeight,
		Landmarks:   f.Landmarks,
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   f.UpdatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/fixtures.
func (h *FixtureHandler) list(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.store.Fixtures().List()
	if err != nil {
		log.WithError(err).Error("Failed to list fixtures")
		writeError(w, http.StatusInternalServerError, "Failed to list fixtures")
		return
	}

	response := listFixturesResponse{
		Fixtures: make([]fixtureResponse, 0, len(fixtures)),
	}
	for _, f := range fixtures {
		response.Fixtures = append(response.Fixtures, toResponse(f))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/fixtures/{id}. The response carries the landmarks and
// the label the current rules assign to them.
func (h *FixtureHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	f, err := h.store.Fixtures().GetByID(id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to get fixture")
		return
	}

	response := toResponse(f)
	if res, err := emotion.Analyze(f.Face(), f.FrameWidth, f.FrameHeight); err == nil {
		response.Classified = res.Label
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/fixtures. Without an expected label the fixture
// is stored with the label it classifies as.
func (h *FixtureHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createFixtureRequest
	if err := decode(r, w, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := emotion.Analyze(req.face(), req.Width, req.Height)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	expected := emotion.Label(req.Expected)
	if expected == "" {
		expected = res.Label
	}

	f := &store.Fixture{
		Name:        req.Name,
		Expected:    expected,
		FrameWidth:  req.Width,
		FrameHeight: req.Height,
		Landmarks:   req.Landmarks,
	}
	if err := h.store.Fixtures().Create(f); err != nil {
		h.writeStoreError(w, err, "Failed to create fixture")
		return
	}

	response := toResponse(f)
	response.Classified = res.Label
	writeJSON(w, http.StatusCreated, response)
}

// update handles PUT /api/fixtures/{id}.
func (h *FixtureHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateFixtureRequest
	if err := decode(r, w, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	f := &store.Fixture{
		ID:       id,
		Name:     req.Name,
		Expected: emotion.Label(req.Expected),
	}
	if err := h.store.Fixtures().Update(f); err != nil {
		h.writeStoreError(w, err, "Failed to update fixture")
		return
	}

	updated, err := h.store.Fixtures().GetByID(id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to get fixture")
		return
	}
	updated.Landmarks = nil

	writeJSON(w, http.StatusOK, toResponse(updated))
}

// delete handles DELETE /api/fixtures/{id}.
func (h *FixtureHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Fixtures().Delete(id); err != nil {
		h.writeStoreError(w, err, "Failed to delete fixture")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// thumbnail handles GET /api/fixtures/{id}/thumbnail.
func (h *FixtureHandler) thumbnail(w http.ResponseWriter, r *http.Request, id string) {
	data, err := h.store.Fixtures().Thumbnail(id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to get thumbnail")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusNotFound, "Fixture has no thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *FixtureHandler) writeStoreError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Fixture not found")
	case errors.Is(err, store.ErrInvalidFixture):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message)
	}
}
