package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/replicate"
)

const imageTextModel = "qwen/qwen-vl-chat"

const defaultImageTextPrompt = "describe the image content in detail"

const mockImageTextDescription = "这张图片展示了一套休闲风格的穿搭：浅色针织上衣搭配高腰牛仔裤，配以白色运动鞋，整体色调柔和，适合日常出街。"

type ImageTextHandler struct {
	cfg             *config.Config
	replicateClient *replicate.Client
	dbClient        *database.Client
}

var imageTextLog = logger.New("api/image-text")

func NewImageTextHandler(cfg *config.Config, replicateClient *replicate.Client, dbClient *database.Client) *ImageTextHandler {
	return &ImageTextHandler{
		cfg:             cfg,
		replicateClient: replicateClient,
		dbClient:        dbClient,
	}
}

// ImageText godoc
// @Summary     Describe an image as text
// @Description Image-to-text description. Costs credits, but writes no generation record.
// @Tags        generation
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ImageTextRequest true "Image to describe"
// @Success     200 {object} models.Envelope{data=models.ImageTextResponse}
// @Router      /api/image-text [post]
func (h *ImageTextHandler) ImageText(c *gin.Context) {
	var req models.ImageTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		imageTextLog.Warn().Err(err).Msg("invalid request body")
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
		imageTextLog.Error().Err(err).Msg("failed to read credits")
		respErr(c, "image to text fail")
		return
	}
	if leftCredits < cost {
		respErr(c, "Not enough credits")
		return
	}

	prompt := req.Description
	if prompt == "" {
		prompt = defaultImageTextPrompt
	}

	var description string
	if h.cfg.MockGeneration {
		description = mockImageTextDescription
		imageTextLog.Info().Msg("using mock description output")
	} else {
		var prediction *replicate.Prediction
		err := h.replicateClient.RetryWithBackoff(c.Request.Context(), func() error {
			var runErr error
			prediction, runErr = h.replicateClient.Run(c.Request.Context(), imageTextModel, map[string]interface{}{
				"image":  resolveImageURL(c, req.BaseImageURL),
				"prompt": prompt,
			})
			return runErr
		}, providerMaxRetries)
		if err != nil {
			imageTextLog.Error().Err(err).Msg("image to text fail")
			respErr(c, "image to text fail")
			return
		}
		description, err = prediction.OutputText()
		if err != nil || description == "" {
			imageTextLog.Error().Err(err).Msg("no description generated")
			respErr(c, "image to text fail")
			return
		}
	}

	err = h.dbClient.ChargeCredits(c.Request.Context(), userUUID, models.CreditsTransOutfitGeneration, cost)
	if errors.Is(err, database.ErrInsufficientCredits) {
		respErr(c, "Not enough credits")
		return
	}
	if err != nil {
		imageTextLog.Error().Err(err).Msg("failed to charge credits")
		respErr(c, "image to text fail")
		return
	}

	respData(c, models.ImageTextResponse{
		Description: description,
		BatchID:     uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	})
}
