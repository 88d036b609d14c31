package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
)

const (
	defaultListLimit = 50
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type CreationsHandler struct {
	dbClient *database.Client
}

var creationsLog = logger.New("api/creations")

func NewCreationsHandler(dbClient *database.Client) *CreationsHandler {
	return &CreationsHandler{dbClient: dbClient}
}

// MyCreations godoc
// @Summary     List the signed-in user's generations
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Envelope{data=models.GenOutfitResponse}
// @Router      /api/my-creations [get]
func (h *CreationsHandler) MyCreations(c *gin.Context) {
	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		respErr(c, "User not authenticated")
		return
	}

	outfits, err := h.dbClient.ListOutfitsByUser(c.Request.Context(), userUUID, defaultListLimit)
	if err != nil {
		creationsLog.Error().Err(err).Msg("failed to list creations")
		respErr(c, "get creations fail")
		return
	}

	respData(c, models.GenOutfitResponse{Outfits: outfits})
}

// Wallpapers godoc
// @Summary     List wallpapers
// @Description Public wallpapers, or the user's own when signed in.
// @Tags        account
// @Produce     json
// @Param       page  query int false "Page number, 1-based"
// @Param       limit query int false "Page size"
// @Success     200 {object} models.Envelope{data=models.GenWallpaperResponse}
// @Router      /api/wallpapers [get]
func (h *CreationsHandler) Wallpapers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	wallpapers, err := h.dbClient.ListWallpapers(c.Request.Context(), middleware.UserUUID(c), page, limit)
	if err != nil {
		creationsLog.Error().Err(err).Msg("failed to list wallpapers")
		respErr(c, "get wallpapers fail")
		return
	}

	respData(c, models.GenWallpaperResponse{Wallpapers: wallpapers})
}

// GetUserCredits godoc
// @Summary     Get the signed-in user's credit balance
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Envelope{data=models.UserCreditsResponse}
// @Router      /api/get-user-credits [get]
func (h *CreationsHandler) GetUserCredits(c *gin.Context) {
	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		respErr(c, "User not authenticated")
		return
	}

	leftCredits, err := h.dbClient.GetUserCredits(c.Request.Context(), userUUID)
	if err != nil {
		creationsLog.Error().Err(err).Msg("failed to read credits")
		respErr(c, "get user credits fail")
		return
	}

	respData(c, models.UserCreditsResponse{LeftCredits: leftCredits})
}

// SyncUser godoc
// @Summary     Upsert the signed-in user
// @Description Creates the user row on first sight and grants the signup bonus.
// @Tags        account
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SyncUserRequest true "Profile fields"
// @Success     200 {object} models.Envelope{data=models.User}
// @Router      /api/sync-user [post]
func (h *CreationsHandler) SyncUser(c *gin.Context) {
	var req models.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		creationsLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.Email == "" {
		respErr(c, "email is required")
		return
	}

	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		respErr(c, "User not authenticated")
		return
	}

	user, err := h.dbClient.SaveUser(c.Request.Context(), userUUID, req.Email, req.Nickname, req.AvatarURL)
	if err != nil {
		creationsLog.Error().Err(err).Msg("failed to sync user")
		respErr(c, "sync user fail")
		return
	}

	respData(c, user)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
