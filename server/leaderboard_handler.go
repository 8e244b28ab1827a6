package server

import (
	"strconv"

	"github.com/Web3vDev/SolanaRacer/auth"
	"github.com/Web3vDev/SolanaRacer/errors"
	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LeaderboardHandler handles standings and rank requests
type LeaderboardHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(app *App) *LeaderboardHandler {
	return &LeaderboardHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "leaderboard").Logger(),
	}
}

// LeaderboardResponse represents the standings with the caller's rank
// @Description Points standings plus the caller's own rank
type LeaderboardResponse struct {
	Entries []providers.LeaderboardEntry `json:"entries"`
	Rank    int                          `json:"rank"`
	Points  int                          `json:"points"`
}

// GetLeaderboard godoc
// @Summary      Get the points standings
// @Description  Returns the top racers by points plus the caller's own rank
// @Tags         leaderboard
// @Produce      json
// @Param        limit  query  int  false  "Rows to return (default 100)"
// @Success      200  {object}  BaseResponse{data=LeaderboardResponse}
// @Failure      401  {object}  BaseResponse
// @Failure      500  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			BadRequest(c, errors.New(errors.ErrInvalidRequest, "invalid limit"))
			return
		}
		limit = parsed
	}

	entries, err := h.app.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load standings")
		HandleAppError(c, errors.Wrap(err, errors.ErrProfileStoreError, "Failed to load standings"))
		return
	}

	response := LeaderboardResponse{Entries: entries}

	// The caller's own rank rides along when a session is live
	if fid, ok := auth.GetFID(c); ok {
		if session, live := h.app.sessions.Peek(fid); live {
			profile := session.Profile()
			response.Points = profile.Points
			if rank, err := h.app.leaderboard.Rank(c.Request.Context(), profile.Points); err == nil {
				response.Rank = rank
			}
		}
	}

	OK(c, response)
}

// RankResponse represents the caller's rank and badge outlook
// @Description Rank with the surrounding badge thresholds
type RankResponse struct {
	Rank     int   `json:"rank"`
	Points   int   `json:"points"`
	BadgeIDs []int `json:"badge_ids"`
}

// GetRank godoc
// @Summary      Get the caller's rank
// @Description  Returns the caller's 1-based rank and unlocked badge set
// @Tags         leaderboard
// @Produce      json
// @Success      200  {object}  BaseResponse{data=RankResponse}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/rank [get]
func (h *LeaderboardHandler) GetRank(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "player identity not found in context"))
		return
	}

	session := h.app.sessions.Acquire(c.Request.Context(), game.Identity{
		FID:         claims.FID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	})
	profile := session.Profile()

	rank := 0
	if r, err := h.app.leaderboard.Rank(c.Request.Context(), profile.Points); err == nil {
		rank = r
	}

	OK(c, RankResponse{
		Rank:     rank,
		Points:   profile.Points,
		BadgeIDs: game.UnlockedBadgeIDs(profile.Points, rank),
	})
}
