package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/imaging"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/storage"
)

const flipCacheSize = 128

type FlipImageHandler struct {
	dbClient      *database.Client
	storageClient *storage.Client
	// cache maps source URL + flip type to the stored flipped URL, so
	// repeated flips of the same image skip the transform and upload.
	cache *lru.Cache[string, string]
}

var flipLog = logger.New("api/flip-image")

func NewFlipImageHandler(dbClient *database.Client, storageClient *storage.Client) *FlipImageHandler {
	cache, _ := lru.New[string, string](flipCacheSize)
	return &FlipImageHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		cache:         cache,
	}
}

// FlipImage godoc
// @Summary     Mirror an image horizontally or vertically
// @Description Deterministic pixel transform. Free, works without a signed-in user.
// @Tags        transform
// @Accept      json
// @Produce     json
// @Param       request body models.FlipImageRequest true "Image and flip direction"
// @Success     200 {object} models.Envelope{data=models.FlipImageResponse}
// @Router      /api/flip-image [post]
func (h *FlipImageHandler) FlipImage(c *gin.Context) {
	var req models.FlipImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		flipLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.BaseImageURL == "" {
		respErr(c, "invalid base_image_url")
		return
	}
	if !imaging.ValidFlipType(req.FlipType) {
		respErr(c, "invalid flip_type, must be horizontal or vertical")
		return
	}

	userUUID := middleware.UserUUID(c)
	sourceURL := resolveImageURL(c, req.BaseImageURL)

	cacheKey := sourceURL + "|" + req.FlipType
	if flippedURL, ok := h.cache.Get(cacheKey); ok {
		flipLog.Info().Str("flipped_url", flippedURL).Msg("flip cache hit")
		respData(c, models.FlipImageResponse{
			FlippedImageURL:  flippedURL,
			OriginalImageURL: sourceURL,
			FlipType:         req.FlipType,
			Outfits:          []models.Outfit{},
		})
		return
	}

	data, err := h.storageClient.Fetch(c.Request.Context(), sourceURL)
	if err != nil {
		flipLog.Error().Err(err).Msg("failed to fetch source image")
		respErr(c, "flip image fail")
		return
	}

	flipped, err := imaging.Flip(data, req.FlipType)
	if err != nil {
		flipLog.Error().Err(err).Msg("failed to flip image")
		respErr(c, "flip image fail")
		return
	}

	batch := uuid.NewString()
	key := fmt.Sprintf("gen/%s_%s_flip.png", batch, req.FlipType)
	uploadResult, err := h.storageClient.Upload(c.Request.Context(), key, flipped, "image/png")
	if err != nil {
		flipLog.Error().Err(err).Msg("failed to store flipped image")
		respErr(c, "flip image fail")
		return
	}

	description := req.Description
	if description == "" {
		description = req.FlipType + " flip"
	}

	outfit := models.Outfit{
		UUID:           batch,
		UserUUID:       models.NewNullString(userUUID),
		CreatedAt:      time.Now().UTC(),
		BaseImageURL:   sourceURL,
		ImgURL:         uploadResult.URL,
		ImgDescription: description,
		Status:         models.StatusActive,
	}

	// Flips are free, but still recorded so they show up in the
	// user's creations.
	if err := h.dbClient.InsertOutfit(c.Request.Context(), &outfit); err != nil {
		flipLog.Error().Err(err).Msg("failed to record flip")
		respErr(c, "flip image fail")
		return
	}

	h.cache.Add(cacheKey, uploadResult.URL)

	respData(c, models.FlipImageResponse{
		FlippedImageURL:  uploadResult.URL,
		OriginalImageURL: sourceURL,
		FlipType:         req.FlipType,
		Outfits:          []models.Outfit{outfit},
	})
}
