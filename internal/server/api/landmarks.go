package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ayusman/nidra/internal/analysis"
	"github.com/ayusman/nidra/internal/detector"
	"github.com/ayusman/nidra/internal/store"
)

// LandmarkHandler serves the landmark role table.
//
//	GET    /api/landmarks         all roles with their effective index
//	GET    /api/landmarks/{role}  one role
//	PUT    /api/landmarks/{role}  {"index": 33}
//	DELETE /api/landmarks/{role}  restore the built-in index
//
// Changes apply to video sessions started afterwards.
type LandmarkHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewLandmarkHandler creates a LandmarkHandler backed by s.
func NewLandmarkHandler(s *store.Store) *LandmarkHandler {
	return &LandmarkHandler{
		store:    s,
		validate: validator.New(),
	}
}

type updateLandmarkRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type landmarkResponse struct {
	Role      string `json:"role"`
	Index     int    `json:"index"`
	Default   int    `json:"default"`
	Custom    bool   `json:"custom"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type listLandmarksResponse struct {
	Landmarks []landmarkResponse `json:"landmarks"`
}

func (h *LandmarkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/landmarks")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	role := analysis.Role(path)
	if !analysis.IsKnownRole(role) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown landmark role %q", path))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, role)
	case http.MethodPut:
		h.update(w, r, role)
	case http.MethodDelete:
		h.reset(w, r, role)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LandmarkHandler) toResponse(role analysis.Role, stored *store.LandmarkRole) landmarkResponse {
	def := analysis.DefaultLandmarkMap()[role]
	resp := landmarkResponse{
		Role:    string(role),
		Index:   def,
		Default: def,
	}
	if stored != nil {
		resp.Index = stored.Index
		resp.Custom = stored.Index != def
		resp.UpdatedAt = stored.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *LandmarkHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Landmarks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list landmark roles")
		return
	}

	byRole := make(map[string]*store.LandmarkRole, len(rows))
	for _, lr := range rows {
		byRole[lr.Role] = lr
	}

	resp := listLandmarksResponse{Landmarks: make([]landmarkResponse, 0, len(analysis.AllRoles()))}
	for _, role := range analysis.AllRoles() {
		resp.Landmarks = append(resp.Landmarks, h.toResponse(role, byRole[string(role)]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LandmarkHandler) get(w http.ResponseWriter, r *http.Request, role analysis.Role) {
	lr, err := h.store.Landmarks().Get(string(role))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to get landmark role")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(role, lr))
}

func (h *LandmarkHandler) update(w http.ResponseWriter, r *http.Request, role analysis.Role) {
	var req updateLandmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "index is required and must be non-negative")
		return
	}
	if *req.Index >= detector.NumFaceLandmarks {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("index must be below %d", detector.NumFaceLandmarks))
		return
	}

	lr := &store.LandmarkRole{Role: string(role), Index: *req.Index}
	if err := h.store.Landmarks().Upsert(lr); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update landmark role")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(role, lr))
}

func (h *LandmarkHandler) reset(w http.ResponseWriter, r *http.Request, role analysis.Role) {
	err := h.store.Landmarks().Delete(string(role))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to reset landmark role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
