package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gameops/remoteconfig/internal/engine"
	"github.com/gameops/remoteconfig/internal/rules"
	"github.com/gameops/remoteconfig/internal/store"
	"github.com/gameops/remoteconfig/internal/telemetry"
)

// resolveResponse is the payload for GET /v1/configs/{gameID}/{key}.
type resolveResponse struct {
	GameID      string         `json:"gameId"`
	Key         string         `json:"key"`
	Environment string         `json:"environment"`
	DataType    rules.DataType `json:"dataType"`
	Value       rules.Value    `json:"value"`
	Reason      engine.Reason  `json:"reason"`
	MatchedRule string         `json:"matchedRule,omitempty"`
	EvaluatedAt string         `json:"evaluatedAt"`
}

// handleResolve handles GET /v1/configs/{gameID}/{key}.
//
// Query parameters: platform, version, country (all optional), env (defaults
// to the server environment), and at — an RFC 3339 debug evaluation instant,
// honored only when the server allows it.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	key := chi.URLParam(r, "key")
	query := r.URL.Query()

	evaluatedAt := time.Now().UTC()
	if at := strings.TrimSpace(query.Get("at")); at != "" {
		if !s.allowDebugInstant {
			writeError(w, r, http.StatusBadRequest, ErrCodeDebugInstantDisabled,
				"evaluation instant override is not allowed in this environment")
			return
		}
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest,
				"at must be an RFC 3339 timestamp")
			return
		}
		evaluatedAt = parsed.UTC()
	}

	env := s.envParam(r)
	cfg, err := s.store.GetConfig(r.Context(), gameID, key, env)
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "config not found")
			return
		}
		s.log.Error().Err(err).Str("game_id", gameID).Str("key", key).Msg("get config")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load config")
		return
	}

	ruleSet, err := s.store.ListRules(r.Context(), cfg.ID)
	if err != nil {
		s.log.Error().Err(err).Str("config_id", cfg.ID).Msg("list rules")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load rules")
		return
	}

	result := engine.Resolve(*cfg, ruleSet, engine.Context{
		Platform:    strings.TrimSpace(query.Get("platform")),
		Version:     strings.TrimSpace(query.Get("version")),
		Country:     strings.TrimSpace(query.Get("country")),
		EvaluatedAt: evaluatedAt,
	})
	telemetry.ObserveResolution(string(result.Reason))

	writeJSON(w, http.StatusOK, resolveResponse{
		GameID:      cfg.GameID,
		Key:         cfg.Key,
		Environment: cfg.Environment,
		DataType:    cfg.DataType,
		Value:       result.Value,
		Reason:      result.Reason,
		MatchedRule: result.MatchedRule,
		EvaluatedAt: evaluatedAt.Format(time.RFC3339),
	})
}
