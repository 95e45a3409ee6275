package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/chemlab-api/internal/api/middleware"
	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/platform/logger"
	"github.com/phrazzld/chemlab-api/internal/service"
	"github.com/phrazzld/chemlab-api/internal/service/auth"
)

// LearnerHandler registers learners and reports their progress.
type LearnerHandler struct {
	learners      service.LearnerService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// NewLearnerHandler creates a LearnerHandler.
func NewLearnerHandler(
	learners service.LearnerService,
	jwtService auth.JWTService,
	authConfig config.AuthConfig,
) *LearnerHandler {
	return &LearnerHandler{
		learners:      learners,
		jwtService:    jwtService,
		tokenLifetime: time.Duration(authConfig.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
	}
}

// Register handles POST /api/learners.
func (h *LearnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	learnerID, err := h.learners.Register(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register learner")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue token")
		return
	}

	log.Info("learner registered via API", "learner_id", learnerID)
	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		LearnerID: learnerID,
		Token:     token,
		ExpiresAt: h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	})
}

// GetProgress handles GET /api/progress.
func (h *LearnerHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return
	}

	ws, err := h.learners.Workspace(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	history, err := h.learners.History(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toProgressResponse(ws.Progression().Get(), history))
}
