package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gameops/remoteconfig/internal/rules"
	"github.com/gameops/remoteconfig/internal/store"
	"github.com/gameops/remoteconfig/internal/telemetry"
)

// ruleRequest is the body for rule create and update.
type ruleRequest struct {
	Priority      int                     `json:"priority"`
	OverrideValue json.RawMessage         `json:"overrideValue"`
	Enabled       *bool                   `json:"enabled,omitempty"` // defaults to true
	Platform      *string                 `json:"platform,omitempty"`
	Version       *rules.VersionCondition `json:"version,omitempty"`
	Country       *string                 `json:"country,omitempty"`
	ActiveAfter   *string                 `json:"activeAfter,omitempty"`
	ActiveBetween *dateWindowDTO          `json:"activeBetween,omitempty"`
}

type dateWindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// handleListRules handles GET /v1/configs/{gameID}/{key}/rules.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfig(w, r)
	if !ok {
		return
	}

	ruleSet, err := s.store.ListRules(r.Context(), cfg.ID)
	if err != nil {
		s.log.Error().Err(err).Str("config_id", cfg.ID).Msg("list rules")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to list rules")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rules": ruleSet})
}

// handleCreateRule handles POST /v1/configs/{gameID}/{key}/rules.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	s.writeRule(w, r, "")
}

// handleUpdateRule handles PUT /v1/configs/{gameID}/{key}/rules/{ruleID}.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	s.writeRule(w, r, chi.URLParam(r, "ruleID"))
}

// writeRule validates and persists a rule; ruleID is empty on create.
func (s *Server) writeRule(w http.ResponseWriter, r *http.Request, ruleID string) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	candidate, ok := s.buildCandidate(w, r, req, ruleID)
	if !ok {
		return
	}

	cfg, ok := s.loadConfig(w, r)
	if !ok {
		return
	}

	existing, err := s.store.ListRules(r.Context(), cfg.ID)
	if err != nil {
		s.log.Error().Err(err).Str("config_id", cfg.ID).Msg("list rules")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load rules")
		return
	}

	if ruleID != "" && !ruleExists(existing, ruleID) {
		writeError(w, r, http.StatusNotFound, ErrCodeRuleNotFound, "rule not found")
		return
	}

	value, err := rules.ValidateRule(candidate, existing, cfg.DataType)
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	rule := rules.Rule{
		ID:            ruleID,
		ConfigID:      cfg.ID,
		Priority:      candidate.Priority,
		OverrideValue: value,
		Enabled:       candidate.Enabled,
		Platform:      candidate.Platform,
		Version:       candidate.Version,
		Country:       candidate.Country,
		ActiveAfter:   candidate.ActiveAfter,
		ActiveBetween: candidate.ActiveBetween,
	}

	var stored *rules.Rule
	if ruleID == "" {
		stored, err = s.store.CreateRule(r.Context(), rule)
	} else {
		stored, err = s.store.UpdateRule(r.Context(), rule)
	}
	if err != nil {
		// The store re-checks priority uniqueness under its own write
		// serialization, so a concurrent writer can still surface here.
		s.writeValidationError(w, r, err)
		return
	}

	status := http.StatusOK
	if ruleID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, stored)
}

// handleDeleteRule handles DELETE /v1/configs/{gameID}/{key}/rules/{ruleID}.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfig(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRule(r.Context(), cfg.ID, chi.URLParam(r, "ruleID")); err != nil {
		if errors.Is(err, rules.ErrRuleNotFound) {
			writeError(w, r, http.StatusNotFound, ErrCodeRuleNotFound, "rule not found")
			return
		}
		s.log.Error().Err(err).Str("config_id", cfg.ID).Msg("delete rule")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to delete rule")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// loadConfig resolves the config addressed by the request path, writing the
// error response itself when the config cannot be loaded.
func (s *Server) loadConfig(w http.ResponseWriter, r *http.Request) (*rules.Config, bool) {
	gameID := chi.URLParam(r, "gameID")
	key := chi.URLParam(r, "key")

	cfg, err := s.store.GetConfig(r.Context(), gameID, key, s.envParam(r))
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "config not found")
			return nil, false
		}
		s.log.Error().Err(err).Str("game_id", gameID).Str("key", key).Msg("get config")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load config")
		return nil, false
	}
	return cfg, true
}

// buildCandidate converts the wire DTO into a validation candidate, rejecting
// malformed timestamps up front.
func (s *Server) buildCandidate(w http.ResponseWriter, r *http.Request, req ruleRequest, ruleID string) (rules.RuleCandidate, bool) {
	candidate := rules.RuleCandidate{
		ID:            ruleID,
		Priority:      req.Priority,
		OverrideValue: req.OverrideValue,
		Enabled:       true,
		Platform:      req.Platform,
		Version:       req.Version,
		Country:       req.Country,
	}
	if req.Enabled != nil {
		candidate.Enabled = *req.Enabled
	}

	if req.ActiveAfter != nil {
		t, ok := parseInstant(w, r, *req.ActiveAfter, "activeAfter")
		if !ok {
			return candidate, false
		}
		candidate.ActiveAfter = &t
	}
	if req.ActiveBetween != nil {
		start, ok := parseInstant(w, r, req.ActiveBetween.Start, "activeBetween.start")
		if !ok {
			return candidate, false
		}
		end, ok := parseInstant(w, r, req.ActiveBetween.End, "activeBetween.end")
		if !ok {
			return candidate, false
		}
		candidate.ActiveBetween = &rules.DateWindow{Start: start, End: end}
	}
	return candidate, true
}

func parseInstant(w http.ResponseWriter, r *http.Request, raw, field string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, field+" must be an RFC 3339 timestamp")
		return time.Time{}, false
	}
	return t.UTC(), true
}

func ruleExists(ruleSet []rules.Rule, id string) bool {
	for _, r := range ruleSet {
		if r.ID == id {
			return true
		}
	}
	return false
}

// writeValidationError maps a validation error kind to its HTTP rejection.
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rules.ErrTypeMismatch):
		telemetry.ObserveRuleRejection(string(ErrCodeTypeMismatch))
		writeError(w, r, http.StatusBadRequest, ErrCodeTypeMismatch, err.Error())
	case errors.Is(err, rules.ErrDuplicatePriority):
		telemetry.ObserveRuleRejection(string(ErrCodeDuplicatePriority))
		writeError(w, r, http.StatusConflict, ErrCodeDuplicatePriority, err.Error())
	case errors.Is(err, rules.ErrInvalidCountryCode):
		telemetry.ObserveRuleRejection(string(ErrCodeInvalidCountryCode))
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidCountryCode, err.Error())
	case errors.Is(err, rules.ErrInvalidDateRange):
		telemetry.ObserveRuleRejection(string(ErrCodeInvalidDateRange))
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error())
	case errors.Is(err, rules.ErrInvalidVersionFormat):
		telemetry.ObserveRuleRejection(string(ErrCodeInvalidVersionFormat))
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidVersionFormat, err.Error())
	case errors.Is(err, rules.ErrRuleNotFound):
		writeError(w, r, http.StatusNotFound, ErrCodeRuleNotFound, err.Error())
	case errors.Is(err, store.ErrConfigNotFound):
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "config not found")
	default:
		s.log.Error().Err(err).Msg("rule write")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to store rule")
	}
}
