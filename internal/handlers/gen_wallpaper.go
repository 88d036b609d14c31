package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/replicate"
	"outfit-studio-backend/internal/storage"
)

const wallpaperModel = "black-forest-labs/flux-schnell"

type GenWallpaperHandler struct {
	cfg             *config.Config
	replicateClient *replicate.Client
	dbClient        *database.Client
	storageClient   *storage.Client
}

var wallpaperLog = logger.New("api/gen-wallpaper")

func NewGenWallpaperHandler(cfg *config.Config, replicateClient *replicate.Client, dbClient *database.Client, storageClient *storage.Client) *GenWallpaperHandler {
	return &GenWallpaperHandler{
		cfg:             cfg,
		replicateClient: replicateClient,
		dbClient:        dbClient,
		storageClient:   storageClient,
	}
}

// GenWallpaper godoc
// @Summary     Generate wallpapers from a text description
// @Description Text-to-image generation. Free, works without a signed-in user.
// @Tags        generation
// @Accept      json
// @Produce     json
// @Param       request body models.GenWallpaperRequest true "Wallpaper description"
// @Success     200 {object} models.Envelope{data=models.GenWallpaperResponse}
// @Router      /api/gen-wallpaper [post]
func (h *GenWallpaperHandler) GenWallpaper(c *gin.Context) {
	var req models.GenWallpaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		wallpaperLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.Description == "" {
		respErr(c, "invalid description")
		return
	}

	userUUID := req.UserUUID
	if userUUID == "" {
		userUUID = middleware.UserUUID(c)
	}

	prompt := "generate  a wallpaper with the following description: " + req.Description
	wallpaperLog.Info().Str("model", wallpaperModel).Str("prompt", prompt).Msg("starting wallpaper generation")

	var prediction *replicate.Prediction
	err := h.replicateClient.RetryWithBackoff(c.Request.Context(), func() error {
		var runErr error
		prediction, runErr = h.replicateClient.Run(c.Request.Context(), wallpaperModel, map[string]interface{}{
			"prompt":        prompt,
			"output_format": "png",
		})
		return runErr
	}, providerMaxRetries)
	if err != nil {
		wallpaperLog.Error().Err(err).Msg("generate wallpaper fail")
		respErr(c, "generate wallpaper fail")
		return
	}

	outputURLs, err := prediction.OutputURLs()
	if err != nil || len(outputURLs) == 0 {
		wallpaperLog.Error().Err(err).Msg("no wallpapers generated")
		respErr(c, "generate wallpaper fail")
		return
	}

	batch := uuid.NewString()
	createdAt := time.Now().UTC()
	wallpapers := make([]models.Wallpaper, 0, len(outputURLs))

	for index, outputURL := range outputURLs {
		key := fmt.Sprintf("wallpaper/%s_%d.png", batch, index)
		uploadResult, err := h.storageClient.DownloadAndUpload(c.Request.Context(), outputURL, key, "image/png")
		if err != nil {
			wallpaperLog.Error().Err(err).Msg("failed to store wallpaper")
			respErr(c, "generate wallpaper fail")
			return
		}

		wallpaperUUID := uuid.NewString()
		if len(outputURLs) == 1 {
			wallpaperUUID = batch
		}

		wallpapers = append(wallpapers, models.Wallpaper{
			UUID:           wallpaperUUID,
			UserUUID:       models.NewNullString(userUUID),
			CreatedAt:      createdAt,
			ImgURL:         uploadResult.URL,
			ImgDescription: req.Description,
			Status:         models.StatusActive,
		})
	}

	if err := h.dbClient.InsertWallpapers(c.Request.Context(), wallpapers); err != nil {
		wallpaperLog.Error().Err(err).Msg("failed to record wallpapers")
		respErr(c, "generate wallpaper fail")
		return
	}

	wallpaperLog.Info().Str("batch", batch).Int("outputs", len(wallpapers)).Msg("gen-wallpaper response ready")
	respData(c, models.GenWallpaperResponse{Prompt: prompt, Wallpapers: wallpapers})
}
