package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gameops/remoteconfig/internal/rules"
	"github.com/gameops/remoteconfig/internal/store"
)

// upsertConfigRequest is the body for POST /v1/configs.
type upsertConfigRequest struct {
	GameID      string          `json:"gameId"`
	Key         string          `json:"key"`
	Environment *string         `json:"environment,omitempty"` // defaults to server env
	DataType    rules.DataType  `json:"dataType"`
	Value       json.RawMessage `json:"value"`
}

// handleUpsertConfig handles POST /v1/configs.
func (s *Server) handleUpsertConfig(w http.ResponseWriter, r *http.Request) {
	var req upsertConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.GameID) == "" {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "gameId is required")
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "key is required")
		return
	}
	if !rules.ValidDataType(req.DataType) {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidDataType,
			"dataType must be one of: number, string, boolean, json")
		return
	}

	env := s.env
	if req.Environment != nil && strings.TrimSpace(*req.Environment) != "" {
		env = strings.TrimSpace(*req.Environment)
	}

	value, err := rules.CoerceValue(req.DataType, req.Value)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeTypeMismatch, err.Error())
		return
	}

	cfg, err := s.store.UpsertConfig(r.Context(), store.UpsertConfigParams{
		GameID:      strings.TrimSpace(req.GameID),
		Key:         strings.TrimSpace(req.Key),
		Environment: env,
		DataType:    req.DataType,
		Value:       value,
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", req.Key).Msg("upsert config")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to store config")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleListConfigs handles GET /v1/configs/{gameID}.
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	configs, err := s.store.ListConfigs(r.Context(), gameID, s.envParam(r))
	if err != nil {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("list configs")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to list configs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"configs": configs})
}

// handleDeleteConfig handles DELETE /v1/configs/{gameID}/{key}.
func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	key := chi.URLParam(r, "key")

	if err := s.store.DeleteConfig(r.Context(), gameID, key, s.envParam(r)); err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "config not found")
			return
		}
		s.log.Error().Err(err).Str("key", key).Msg("delete config")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to delete config")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
