package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/store"
)

func sessionResponse(s *store.SessionRow) SessionResponse {
	return SessionResponse{
		SessionID:     s.ID,
		WorkspacePath: s.WorkspacePath,
		Name:          s.Name,
		State:         s.State,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func artifactResponse(a *store.ArtifactRow) ArtifactResponse {
	return ArtifactResponse{
		ArtifactID: a.ID,
		Type:       a.Type,
		Scope:      a.Scope,
		Content:    a.Content,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// SaveSession handles POST /api/sessions.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("session_id is required"))
		return
	}
	saved, err := h.svc.SaveSession(r.Context(), store.SessionRow{
		ID:            req.SessionID,
		WorkspacePath: req.WorkspacePath,
		Name:          req.Name,
		State:         req.State,
	})
	if err != nil {
		slog.Error("save session failed", slog.String("session_id", req.SessionID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(saved))
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get session failed", slog.String("session_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s))
}

// ListSessions handles GET /api/sessions?workspace=.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context(), r.URL.Query().Get("workspace"))
	if err != nil {
		slog.Error("list sessions failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out, "total": len(out)})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete session failed", slog.String("session_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveArtifact handles POST /api/artifacts.
func (h *Handler) SaveArtifact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SaveArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ArtifactID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("artifact_id is required"))
		return
	}
	saved, err := h.svc.SaveArtifact(r.Context(), store.ArtifactRow{
		ID:       req.ArtifactID,
		Type:     req.Type,
		Scope:    req.Scope,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		slog.Error("save artifact failed", slog.String("artifact_id", req.ArtifactID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, artifactResponse(saved))
}

// GetArtifact handles GET /api/artifacts/{id}.
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.svc.GetArtifact(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get artifact failed", slog.String("artifact_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, artifactResponse(a))
}

// ListArtifacts handles GET /api/artifacts?scope=&type=.
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	artifacts, err := h.svc.ListArtifacts(r.Context(), q.Get("scope"), q.Get("type"))
	if err != nil {
		slog.Error("list artifacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]ArtifactResponse, 0, len(artifacts))
	for i := range artifacts {
		out = append(out, artifactResponse(&artifacts[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": out, "total": len(out)})
}

// DeleteArtifact handles DELETE /api/artifacts/{id}.
func (h *Handler) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteArtifact(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete artifact failed", slog.String("artifact_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
