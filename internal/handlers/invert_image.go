package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/imaging"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/storage"
)

type InvertImageHandler struct {
	cfg           *config.Config
	dbClient      *database.Client
	storageClient *storage.Client
}

var invertLog = logger.New("api/invert-image")

func NewInvertImageHandler(cfg *config.Config, dbClient *database.Client, storageClient *storage.Client) *InvertImageHandler {
	return &InvertImageHandler{
		cfg:           cfg,
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// InvertImage godoc
// @Summary     Invert an image's colors
// @Description Deterministic pixel transform. Costs credits.
// @Tags        transform
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.InvertImageRequest true "Image to invert"
// @Success     200 {object} models.Envelope{data=models.GenOutfitResponse}
// @Router      /api/invert-image [post]
func (h *InvertImageHandler) InvertImage(c *gin.Context) {
	var req models.InvertImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invertLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.BaseImageURL == "" {
		respErr(c, "invalid base_image_url")
		return
	}

	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		respErr(c, "User not authenticated")
		return
	}

	cost := h.cfg.OutfitGenerationCost
	leftCredits, err := h.dbClient.GetUserCredits(c.Request.Context(), userUUID)
	if err != nil {
		invertLog.Error().Err(err).Msg("failed to read credits")
		respErr(c, "invert image fail")
		return
	}
	if leftCredits < cost {
		respErr(c, "Not enough credits")
		return
	}

	sourceURL := resolveImageURL(c, req.BaseImageURL)

	data, err := h.storageClient.Fetch(c.Request.Context(), sourceURL)
	if err != nil {
		invertLog.Error().Err(err).Msg("failed to fetch source image")
		respErr(c, "invert image fail")
		return
	}

	inverted, err := imaging.Invert(data)
	if err != nil {
		invertLog.Error().Err(err).Msg("failed to invert image")
		respErr(c, "invert image fail")
		return
	}

	batch := uuid.NewString()
	key := fmt.Sprintf("gen/%s_invert.png", batch)
	uploadResult, err := h.storageClient.Upload(c.Request.Context(), key, inverted, "image/png")
	if err != nil {
		invertLog.Error().Err(err).Msg("failed to store inverted image")
		respErr(c, "invert image fail")
		return
	}

	description := req.Description
	if description == "" {
		description = "color inversion"
	}

	outfits := []models.Outfit{{
		UUID:           batch,
		UserUUID:       models.NewNullString(userUUID),
		CreatedAt:      time.Now().UTC(),
		BaseImageURL:   sourceURL,
		ImgURL:         uploadResult.URL,
		ImgDescription: description,
		Status:         models.StatusActive,
	}}

	err = h.dbClient.InsertOutfitsAndCharge(c.Request.Context(), outfits, userUUID, models.CreditsTransOutfitGeneration, cost)
	if errors.Is(err, database.ErrInsufficientCredits) {
		respErr(c, "Not enough credits")
		return
	}
	if err != nil {
		invertLog.Error().Err(err).Msg("failed to record inversion")
		respErr(c, "invert image fail")
		return
	}

	respData(c, models.GenOutfitResponse{Outfits: outfits})
}
