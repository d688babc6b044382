package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"domino-service/internal/middleware"
	"domino-service/internal/service"
	"domino-service/internal/service/arena"
	"domino-service/internal/service/game"
	"domino-service/internal/ws"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/domino/v1")
	{
		v1.GET("/strategies", handler.ListStrategies)

		v1.POST("/matches", handler.CreateMatch)
		v1.GET("/matches", handler.ListMatches)

		matchGroup := v1.Group("/matches/:id")
		matchGroup.Use(middleware.SeatTokenRequired())
		{
			matchGroup.GET("", handler.GetMatch)
			matchGroup.POST("/play", handler.PlayTile)
			matchGroup.POST("/pass", handler.PassTurn)
			matchGroup.DELETE("", handler.DeleteMatch)
			matchGroup.GET("/history", handler.MatchHistory)
		}

		arenaGroup := v1.Group("/arena")
		{
			arenaGroup.POST("/runs", handler.RunArena)
			arenaGroup.GET("/runs", handler.ListArenaRuns)
			arenaGroup.GET("/runs/:id", handler.GetArenaRun)
		}
	}

	r.GET("/ws/matches/:id", wsHandler.HandleMatchWS)
}

type createMatchBody struct {
	TargetPoints int    `json:"targetPoints" binding:"omitempty,min=1"`
	Mode         string `json:"mode" binding:"omitempty,oneof=ffa teams"`
	Opponent     string `json:"opponent"`
}

type playBody struct {
	TileIndex *int   `json:"tileIndex" binding:"required,min=0"`
	Side      string `json:"side" binding:"required"`
}

type arenaRunBody struct {
	StrategyA    string `json:"strategyA" binding:"required"`
	StrategyB    string `json:"strategyB" binding:"required"`
	NumMatches   int    `json:"numMatches"`
	TargetPoints int    `json:"targetPoints"`
	Seed         int64  `json:"seed"`
}

func (h *Handler) ListStrategies(c *gin.Context) {
	response.Success(c, gin.H{"strategies": h.services.Registry.Names()})
}

func (h *Handler) CreateMatch(c *gin.Context) {
	var body createMatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.services.Game.CreateMatch(c.Request.Context(), game.CreateMatchRequest{
		TargetPoints: body.TargetPoints,
		Mode:         body.Mode,
		Opponent:     body.Opponent,
	})
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	response.Success(c, gin.H{
		"matchId": created.State.MatchID,
		"token":   created.Token,
		"state":   created.State,
	})
}

func (h *Handler) GetMatch(c *gin.Context) {
	view, err := h.services.Game.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) PlayTile(c *gin.Context) {
	var body playBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.services.Game.Play(c.Request.Context(), c.Param("id"), *body.TileIndex, body.Side)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) PassTurn(c *gin.Context) {
	view, err := h.services.Game.Pass(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) DeleteMatch(c *gin.Context) {
	if err := h.services.Game.DeleteMatch(c.Request.Context(), c.Param("id")); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *Handler) MatchHistory(c *gin.Context) {
	detail, err := h.services.Game.MatchHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *Handler) ListMatches(c *gin.Context) {
	page, size, ok := parsePaging(c)
	if !ok {
		return
	}
	result, err := h.services.Game.ListMatches(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Page(c, result.Items, result.Total, page, size)
}

func (h *Handler) RunArena(c *gin.Context) {
	var body arenaRunBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.services.Arena.Run(c.Request.Context(), arena.RunRequest{
		StrategyA:    body.StrategyA,
		StrategyB:    body.StrategyB,
		NumMatches:   body.NumMatches,
		TargetPoints: body.TargetPoints,
		Seed:         body.Seed,
	})
	if err != nil {
		h.handleArenaError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *Handler) ListArenaRuns(c *gin.Context) {
	page, size, ok := parsePaging(c)
	if !ok {
		return
	}
	result, err := h.services.Arena.ListRuns(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Page(c, result.Items, result.Total, page, size)
}

func (h *Handler) GetArenaRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	detail, err := h.services.Arena.GetRun(c.Request.Context(), id)
	if err != nil {
		h.handleArenaError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *Handler) handleGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrMatchNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrIllegalMove),
		errors.Is(err, appErr.ErrVoluntaryPassRejected),
		errors.Is(err, appErr.ErrInvalidConfig),
		errors.Is(err, appErr.ErrUnknownStrategy):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrNotSeatTurn),
		errors.Is(err, appErr.ErrNoActiveHand),
		errors.Is(err, appErr.ErrMatchAlreadyOver),
		errors.Is(err, appErr.ErrMatchBusy):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrMatchAccessDenied):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleArenaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrArenaRunNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrArenaValidation),
		errors.Is(err, appErr.ErrUnknownStrategy),
		errors.Is(err, appErr.ErrInvalidConfig):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func parsePaging(c *gin.Context) (int, int, bool) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return page, size, true
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}
