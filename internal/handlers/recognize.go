package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"outfit-studio-backend/internal/baiduocr"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/replicate"
)

type RecognizeHandler struct {
	cfg             *config.Config
	ocrClient       *baiduocr.Client
	replicateClient *replicate.Client
	dbClient        *database.Client
}

var recognizeLog = logger.New("api/recognize")

func NewRecognizeHandler(cfg *config.Config, ocrClient *baiduocr.Client, replicateClient *replicate.Client, dbClient *database.Client) *RecognizeHandler {
	return &RecognizeHandler{
		cfg:             cfg,
		ocrClient:       ocrClient,
		replicateClient: replicateClient,
		dbClient:        dbClient,
	}
}

// RecognizeText godoc
// @Summary     Recognize text in an image
// @Description OCR on a base64-encoded image. Costs credits. Unlike the other
// @Description routes this one reports errors through conventional HTTP statuses.
// @Tags        recognition
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RecognizeRequest true "Base64 image"
// @Success     200 {object} models.Envelope{data=models.RecognizeTextResponse}
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/recognize-text [post]
func (h *RecognizeHandler) RecognizeText(c *gin.Context) {
	var req models.RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, models.Envelope{Code: http.StatusBadRequest, Message: "image is required"})
		return
	}

	userUUID := middleware.UserUUID(c)
	if userUUID == "" {
		c.JSON(http.StatusUnauthorized, models.Envelope{Code: http.StatusUnauthorized, Message: "User not authenticated"})
		return
	}

	cost := h.cfg.OutfitGenerationCost
	leftCredits, err := h.dbClient.GetUserCredits(c.Request.Context(), userUUID)
	if err != nil {
		recognizeLog.Error().Err(err).Msg("failed to read credits")
		c.JSON(http.StatusInternalServerError, models.Envelope{Code: http.StatusInternalServerError, Message: "recognize text fail"})
		return
	}
	if leftCredits < cost {
		c.JSON(http.StatusForbidden, models.Envelope{Code: http.StatusForbidden, Message: "Not enough credits"})
		return
	}

	results, err := h.ocrClient.RecognizeText(c.Request.Context(), req.Image)
	if err != nil {
		recognizeLog.Error().Err(err).Msg("recognize text fail")
		c.JSON(http.StatusInternalServerError, models.Envelope{Code: http.StatusInternalServerError, Message: "recognize text fail"})
		return
	}

	err = h.dbClient.ChargeCredits(c.Request.Context(), userUUID, models.CreditsTransOutfitGeneration, cost)
	if errors.Is(err, database.ErrInsufficientCredits) {
		c.JSON(http.StatusForbidden, models.Envelope{Code: http.StatusForbidden, Message: "Not enough credits"})
		return
	}
	if err != nil {
		recognizeLog.Error().Err(err).Msg("failed to charge credits")
		c.JSON(http.StatusInternalServerError, models.Envelope{Code: http.StatusInternalServerError, Message: "recognize text fail"})
		return
	}

	c.JSON(http.StatusOK, models.Envelope{
		Code:    0,
		Message: "ok",
		Data:    models.RecognizeTextResponse{Results: results},
	})
}

// RecognizeFont godoc
// @Summary     Identify the font used in an image
// @Description Vision-model font identification with similar-font suggestions. Costs credits.
// @Tags        recognition
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RecognizeRequest true "Image data URL or base64"
// @Success     200 {object} models.Envelope{data=models.FontRecognitionResult}
// @Router      /api/recognize-font [post]
func (h *RecognizeHandler) RecognizeFont(c *gin.Context) {
	var req models.RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		respErr(c, "image is required")
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
		recognizeLog.Error().Err(err).Msg("failed to read credits")
		respErr(c, "recognize font fail")
		return
	}
	if leftCredits < cost {
		respErr(c, "Not enough credits")
		return
	}

	result, err := h.replicateClient.RecognizeFont(c.Request.Context(), req.Image)
	if err != nil {
		recognizeLog.Error().Err(err).Msg("recognize font fail")
		respErr(c, "recognize font fail")
		return
	}

	err = h.dbClient.ChargeCredits(c.Request.Context(), userUUID, models.CreditsTransOutfitGeneration, cost)
	if errors.Is(err, database.ErrInsufficientCredits) {
		respErr(c, "Not enough credits")
		return
	}
	if err != nil {
		recognizeLog.Error().Err(err).Msg("failed to charge credits")
		respErr(c, "recognize font fail")
		return
	}

	respData(c, result)
}
