package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/recommend"
	"github.com/coverscan/coverscan/internal/store"
)

const noPlansDetail = "No plans in database. Trigger /api/scrape first."

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "coverscan API is running",
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	filter := store.PlanFilter{Source: r.URL.Query().Get("source")}
	if raw := r.URL.Query().Get("min_csr"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_csr must be a number")
			return
		}
		filter.MinCSR = v
	}

	plans, err := s.store.ListPlans(r.Context(), filter)
	if err != nil {
		zap.L().Error("list plans", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.store.CountPlans(r.Context())
	if err != nil {
		zap.L().Error("count plans", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	sources, err := s.store.Sources(r.Context())
	if err != nil {
		zap.L().Error("list sources", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_plans": total,
		"sources":     sources,
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	rec, err := s.engine.Recommend(r.Context(), profile)
	if err != nil {
		s.writeEngineError(w, err, "recommend")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type compareRequest struct {
	Profile model.UserProfile `json:"profile" validate:"required"`
	Plans   []model.PlanKey   `json:"plans" validate:"required,min=2,max=3"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	for _, key := range req.Plans {
		if strings.TrimSpace(key.PlanName) == "" || strings.TrimSpace(key.Provider) == "" {
			writeError(w, http.StatusBadRequest, "each plan needs plan_name and provider")
			return
		}
	}
	applyProfileDefaults(&req.Profile)

	cmp, err := s.engine.Compare(r.Context(), req.Profile, req.Plans)
	if err != nil {
		s.writeEngineError(w, err, "compare")
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type chatRequest struct {
	Question string `json:"question" validate:"required"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	ans, err := s.engine.Chat(r.Context(), req.Question)
	if err != nil {
		s.writeEngineError(w, err, "chat")
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	est, err := s.engine.Estimate(r.Context(), profile)
	if err != nil {
		s.writeEngineError(w, err, "estimate")
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}

	// The run outlives the request; a second trigger while one is running
	// returns immediately inside the runner.
	go func() {
		if _, err := s.ingestor.Run(context.Background()); err != nil {
			zap.L().Warn("triggered scrape did not run", zap.Error(err))
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Scrape job started in background. Check /api/plans in ~30s.",
	})
}

// decodeProfile decodes and validates a user profile body, applying the
// default minimum CSR when the field is omitted.
func (s *Server) decodeProfile(w http.ResponseWriter, r *http.Request) (model.UserProfile, bool) {
	var profile model.UserProfile
	if !s.decodeAndValidate(w, r, &profile) {
		return profile, false
	}
	applyProfileDefaults(&profile)
	return profile, true
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func applyProfileDefaults(profile *model.UserProfile) {
	if profile.MinCSR == 0 {
		profile.MinCSR = model.DefaultMinCSR
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error, op string) {
	if eris.Is(err, recommend.ErrNoPlans) {
		writeError(w, http.StatusNotFound, noPlansDetail)
		return
	}
	if eris.Is(err, recommend.ErrPlanNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	zap.L().Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, op+" failed")
}
