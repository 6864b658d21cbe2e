package api

import (
	"net/http"

	"github.com/ayusman/bhava/internal/emotion"
)

// ClassifyHandler labels a single face posted as landmarks.
type ClassifyHandler struct{}

// NewClassifyHandler creates a new ClassifyHandler.
func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

type classifyResponse struct {
	Label    emotion.Label    `json:"label"`
	Display  string           `json:"display"`
	Features emotion.Features `json:"features"`
	Points   emotion.Points   `json:"points"`
}

// ServeHTTP handles POST /api/classify.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req faceRequest
	if err := decode(r, w, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := emotion.Analyze(req.face(), req.Width, req.Height)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		Label:    res.Label,
		Display:  res.Label.Display(),
		Features: res.Features,
		Points:   res.Points,
	})
}
