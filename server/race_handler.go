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

// RaceHandler handles gameplay HTTP requests
//
// Flow: HTTP Request -> raceRoutes -> RaceHandler -> Session -> game engine
//
// Responsibilities:
// - Extract player identity from JWT token
// - Validate request parameters
// - Call into the player session for game logic
// - Format and return HTTP responses
type RaceHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewRaceHandler creates a new race handler
func NewRaceHandler(app *App) *RaceHandler {
	return &RaceHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "race").Logger(),
	}
}

// identityFromContext builds the game identity from JWT claims
func (h *RaceHandler) identityFromContext(c *gin.Context) (game.Identity, error) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		return game.Identity{}, errors.New(errors.ErrUnauthorized, "player identity not found in context")
	}
	return game.Identity{
		FID:         claims.FID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	}, nil
}

// session resolves the player session or writes an error response
func (h *RaceHandler) session(c *gin.Context) (*Session, bool) {
	identity, err := h.identityFromContext(c)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to extract player identity")
		Unauthorized(c, err)
		return nil, false
	}
	return h.app.sessions.Acquire(c.Request.Context(), identity), true
}

// idParam parses a numeric path parameter
func idParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errors.New(errors.ErrInvalidRequest, "invalid "+name)
	}
	return id, nil
}

// PredictRequest represents the prediction request body
// @Description Prediction request payload
type PredictRequest struct {
	// Price direction call (required, "up" or "down")
	Direction string `json:"direction" binding:"required" example:"up"`
}

// PredictResponse represents the accepted round
// @Description Accepted prediction round
type PredictResponse struct {
	Round  game.Round  `json:"round"`
	Energy game.Energy `json:"energy"`
}

// Predict godoc
// @Summary      Start a race
// @Description  Accepts an up/down SOL price call, burns one energy, and schedules resolution
// @Tags         race
// @Accept       json
// @Produce      json
// @Param        request  body      PredictRequest  true  "Prediction request"
// @Success      200  {object}  BaseResponse{data=PredictResponse}
// @Failure      400  {object}  BaseResponse
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/predict [post]
func (h *RaceHandler) Predict(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.New(errors.ErrInvalidRequest, "Invalid request payload"))
		return
	}

	round, err := session.Predict(game.Direction(req.Direction))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	profile := session.Profile()
	h.logger.Info().
		Int64("fid", profile.FID).
		Str("direction", req.Direction).
		Int("energy", profile.Energy.Remaining).
		Msg("Race started")

	OK(c, PredictResponse{Round: round, Energy: profile.Energy})
}

// GetRound godoc
// @Summary      Get the active round
// @Description  Returns the state of the player's current prediction round
// @Tags         race
// @Produce      json
// @Success      200  {object}  BaseResponse{data=game.Round}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/round [get]
func (h *RaceHandler) GetRound(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	OK(c, session.Round())
}

// ProfileResponse represents the player profile with derived tiers
// @Description Player profile with derived progression fields
type ProfileResponse struct {
	Profile        *game.Profile `json:"profile"`
	Level          game.Level    `json:"level"`
	LevelProgress  float64       `json:"level_progress"`
	BadgeIDs       []int         `json:"badge_ids"`
	FrameIDs       []int         `json:"frame_ids"`
	SuccessRate    float64       `json:"success_rate"`
	Multiplier     float64       `json:"multiplier"`
	NextEnergyTick int64         `json:"next_energy_tick"`
}

// GetProfile godoc
// @Summary      Get the player profile
// @Description  Returns the full profile plus derived level, badges, frames, and effective rates
// @Tags         profile
// @Produce      json
// @Success      200  {object}  BaseResponse{data=ProfileResponse}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/profile [get]
func (h *RaceHandler) GetProfile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	profile := session.Profile()
	rank := 0
	if h.app.leaderboard != nil {
		if r, err := h.app.leaderboard.Rank(c.Request.Context(), profile.Points); err == nil {
			rank = r
		}
	}

	OK(c, ProfileResponse{
		Profile:        profile,
		Level:          game.CurrentLevel(profile.Points),
		LevelProgress:  game.LevelProgress(profile.Points),
		BadgeIDs:       game.UnlockedBadgeIDs(profile.Points, rank),
		FrameIDs:       game.UnlockedFrameIDs(profile.Points),
		SuccessRate:    game.EffectiveSuccessRate(profile),
		Multiplier:     game.PointsMultiplier(profile),
		NextEnergyTick: int64(session.NextEnergyTick().Seconds()),
	})
}

// BuyUpgrade godoc
// @Summary      Buy an upgrade level
// @Description  Spends points on the next level of a garage upgrade
// @Tags         shop
// @Produce      json
// @Param        id  path  int  true  "Upgrade ID"
// @Success      200  {object}  BaseResponse{data=game.Profile}
// @Failure      400  {object}  BaseResponse
// @Failure      404  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/shop/upgrades/{id} [post]
func (h *RaceHandler) BuyUpgrade(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		BadRequest(c, err)
		return
	}

	profile, err := session.BuyUpgrade(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, profile)
}

// BuyCar godoc
// @Summary      Buy a car
// @Description  Spends points on a car from the garage catalog
// @Tags         shop
// @Produce      json
// @Param        id  path  int  true  "Car ID"
// @Success      200  {object}  BaseResponse{data=game.Profile}
// @Failure      400  {object}  BaseResponse
// @Failure      409  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/shop/cars/{id} [post]
func (h *RaceHandler) BuyCar(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		BadRequest(c, err)
		return
	}

	profile, err := session.BuyCar(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, profile)
}

// EquipCar godoc
// @Summary      Equip a car
// @Description  Swaps the equipped car for another owned one
// @Tags         garage
// @Produce      json
// @Param        id  path  int  true  "Car ID"
// @Success      200  {object}  BaseResponse{data=game.Profile}
// @Failure      400  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/garage/equip/{id} [post]
func (h *RaceHandler) EquipCar(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		BadRequest(c, err)
		return
	}

	profile, err := session.EquipCar(id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, profile)
}

// UseItem godoc
// @Summary      Use an inventory item
// @Description  Consumes one item (energy restore or double points boost)
// @Tags         items
// @Produce      json
// @Param        id  path  int  true  "Item ID"
// @Success      200  {object}  BaseResponse{data=game.Profile}
// @Failure      400  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/items/{id}/use [post]
func (h *RaceHandler) UseItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		BadRequest(c, err)
		return
	}

	profile, err := session.UseItem(id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, profile)
}

// TaskListEntry pairs a catalog task with its completion state
// @Description Task with availability for the current player
type TaskListEntry struct {
	Task      game.Task `json:"task"`
	Claimable bool      `json:"claimable"`
	Completed int       `json:"completed"`
}

// ListTasks godoc
// @Summary      List tasks
// @Description  Returns the task catalog annotated with the player's completion state
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  BaseResponse{data=[]TaskListEntry}
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/tasks [get]
func (h *RaceHandler) ListTasks(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	profile := session.Profile()
	now := h.app.deps.now()

	tasks := game.TaskCatalog()
	entries := make([]TaskListEntry, 0, len(tasks))
	for _, task := range tasks {
		state := profile.Tasks[task.ID]
		entries = append(entries, TaskListEntry{
			Task:      task,
			Claimable: game.CanCompleteTask(profile, task, now),
			Completed: state.Count,
		})
	}
	OK(c, entries)
}

// CompleteTaskResponse represents a claimed task reward
// @Description Claimed task with the updated profile
type CompleteTaskResponse struct {
	Task    game.Task     `json:"task"`
	Profile *game.Profile `json:"profile"`
}

// CompleteTask godoc
// @Summary      Claim a task reward
// @Description  Marks a task complete and applies its point, energy, and item rewards
// @Tags         tasks
// @Produce      json
// @Param        id  path  int  true  "Task ID"
// @Success      200  {object}  BaseResponse{data=CompleteTaskResponse}
// @Failure      400  {object}  BaseResponse
// @Failure      409  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/tasks/{id}/complete [post]
func (h *RaceHandler) CompleteTask(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		BadRequest(c, err)
		return
	}

	profile, task, err := session.CompleteTask(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, CompleteTaskResponse{Task: task, Profile: profile})
}

// CatalogResponse represents the static game catalogs
// @Description Static catalogs for the client
type CatalogResponse struct {
	Cars     []game.Car     `json:"cars"`
	Upgrades []game.Upgrade `json:"upgrades"`
	Items    []game.Item    `json:"items"`
	Tasks    []game.Task    `json:"tasks"`
	Levels   []game.Level   `json:"levels"`
	Badges   []game.Badge   `json:"badges"`
	Frames   []game.Frame   `json:"frames"`
}

// GetCatalog godoc
// @Summary      Get game catalogs
// @Description  Returns the static car, upgrade, item, task, and tier catalogs
// @Tags         race
// @Produce      json
// @Success      200  {object}  BaseResponse{data=CatalogResponse}
// @Router       /race/catalog [get]
func (h *RaceHandler) GetCatalog(c *gin.Context) {
	OK(c, CatalogResponse{
		Cars:     game.CarCatalog(),
		Upgrades: game.DefaultUpgrades(),
		Items:    game.DefaultItems(),
		Tasks:    game.TaskCatalog(),
		Levels:   game.Levels,
		Badges:   game.Badges,
		Frames:   game.Frames,
	})
}

// HistoryQueryParams represents query parameters for the event history
type HistoryQueryParams struct {
	Kind  string `form:"kind" binding:"required"`
	Limit int    `form:"limit"`
	Page  int    `form:"page"`
}

// GetHistory godoc
// @Summary      Get event history
// @Description  Returns the player's past races, purchases, or unlocks
// @Tags         history
// @Produce      json
// @Param        kind   query  string  true   "Event kind (race, purchase, unlock)"
// @Param        limit  query  int     false  "Items per page"
// @Param        page   query  int     false  "Page number (0-based)"
// @Success      200  {object}  BaseResponse{data=providers.HistoryResponse}
// @Failure      400  {object}  BaseResponse
// @Failure      401  {object}  BaseResponse
// @Security     BearerAuth
// @Router       /race/history [get]
func (h *RaceHandler) GetHistory(c *gin.Context) {
	identity, err := h.identityFromContext(c)
	if err != nil {
		Unauthorized(c, err)
		return
	}

	var params HistoryQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, errors.New(errors.ErrInvalidRequest, err.Error()))
		return
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Page < 0 {
		params.Page = 0
	}

	result, err := h.app.audit.GetHistory(c.Request.Context(), &providers.HistoryQuery{
		FID:   identity.FID,
		Kind:  params.Kind,
		Page:  params.Page,
		Limit: params.Limit,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get event history")
		InternalError(c, errors.Wrap(err, errors.ErrInternalServerError, "Failed to get event history"))
		return
	}
	OK(c, result)
}
