package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
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

// This model supports both image-to-image and layered decomposition.
const outfitModel = "qwen/qwen-image-layered"

const (
	defaultOutputFormat  = "webp"
	defaultOutputQuality = 95
	defaultNumLayers     = 4
)

// providerMaxRetries bounds retries around provider calls that fail
// transiently.
const providerMaxRetries = 3

var mockLayeredOutputURLs = []string{
	"https://pub-f6dab13c3cbf4c8c95f916516af9779f.r2.dev/gen/3db8c30e-43bf-4888-aee8-7910f214690d_layer_0.webp",
	"https://pub-f6dab13c3cbf4c8c95f916516af9779f.r2.dev/gen/3db8c30e-43bf-4888-aee8-7910f214690d_layer_1.webp",
	"https://pub-f6dab13c3cbf4c8c95f916516af9779f.r2.dev/gen/3db8c30e-43bf-4888-aee8-7910f214690d_layer_2.webp",
	"https://pub-f6dab13c3cbf4c8c95f916516af9779f.r2.dev/gen/3db8c30e-43bf-4888-aee8-7910f214690d_layer_3.webp",
}

var mockOutfitOutputURLs = []string{
	"https://pub-453ee7f62d7b43479f418b2674b1c1f0.r2.dev/gen/38d63328-01a4-409f-ba65-447a30ffba0c_outfit.png",
}

var localHostnames = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

type GenOutfitHandler struct {
	cfg             *config.Config
	replicateClient *replicate.Client
	dbClient        *database.Client
	storageClient   *storage.Client
}

var genOutfitLog = logger.New("api/gen-outfit")

func NewGenOutfitHandler(cfg *config.Config, replicateClient *replicate.Client, dbClient *database.Client, storageClient *storage.Client) *GenOutfitHandler {
	return &GenOutfitHandler{
		cfg:             cfg,
		replicateClient: replicateClient,
		dbClient:        dbClient,
		storageClient:   storageClient,
	}
}

// GenOutfit godoc
// @Summary     Generate outfit images
// @Description Runs image-to-image generation, or layered decomposition when "image" is set. Costs credits. With MOCK_OUTFIT_GENERATION=true returns canned output.
// @Tags        generation
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenOutfitRequest true "Generation parameters"
// @Success     200 {object} models.Envelope{data=models.GenOutfitResponse}
// @Router      /api/gen-outfit [post]
func (h *GenOutfitHandler) GenOutfit(c *gin.Context) {
	var req models.GenOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		genOutfitLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	h.generate(c, &req)
}

func (h *GenOutfitHandler) generate(c *gin.Context, req *models.GenOutfitRequest) {
	genOutfitLog.Info().
		Str("base_image_url", req.BaseImageURL).
		Str("image", req.Image).
		Str("description", req.Description).
		Msg("gen-outfit request received")

	// A non-empty "image" switches the request into layered mode.
	isLayeredRequest := req.Image != ""
	sourceImage := req.BaseImageURL
	if isLayeredRequest {
		sourceImage = req.Image
	}

	if sourceImage == "" {
		genOutfitLog.Warn().Msg("invalid base_image_url")
		if isLayeredRequest {
			respErr(c, "invalid image")
		} else {
			respErr(c, "invalid base_image_url")
		}
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
		genOutfitLog.Error().Err(err).Msg("failed to read credits")
		respErr(c, "generate outfit fail")
		return
	}
	if leftCredits < cost {
		respErr(c, "Not enough credits")
		return
	}

	batch := uuid.NewString()

	resolvedSourceImage, err := h.ensureRemoteSourceImage(c, sourceImage, batch)
	if err != nil {
		genOutfitLog.Error().Err(err).Msg("failed to rehost source image")
		respErr(c, "generate outfit fail")
		return
	}

	resolvedDescription := req.Description
	if resolvedDescription == "" {
		resolvedDescription = "auto"
	}

	fileExtension := "png"
	contentType := "image/png"

	numLayers := defaultNumLayers
	if req.NumLayers != nil {
		numLayers = *req.NumLayers
	}

	if isLayeredRequest {
		outputFormat := strings.ToLower(req.OutputFormat)
		if outputFormat != "png" {
			outputFormat = defaultOutputFormat
		}
		fileExtension = outputFormat
		contentType = contentTypeForExt(outputFormat)
	}

	genOutfitLog.Info().Str("model", outfitModel).Str("prompt", resolvedDescription).Msg("starting AI generation")

	var outputURLs []string
	if h.cfg.MockGeneration {
		if isLayeredRequest {
			outputURLs = mockLayeredOutputURLs
			if numLayers < len(outputURLs) {
				outputURLs = outputURLs[:numLayers]
			}
		} else {
			outputURLs = mockOutfitOutputURLs
		}
		genOutfitLog.Info().Strs("output_urls", outputURLs).Msg("using mock generation output")
	} else {
		outputURLs, err = h.invoke(c.Request.Context(), req, resolvedSourceImage, resolvedDescription, isLayeredRequest, fileExtension)
		if err != nil {
			genOutfitLog.Error().Err(err).Msg("generate outfit fail")
			respErr(c, "generate outfit fail")
			return
		}
	}

	if len(outputURLs) == 0 {
		genOutfitLog.Error().Msg("no images generated")
		respErr(c, "generate outfit fail")
		return
	}

	createdAt := time.Now().UTC()
	outfits := make([]models.Outfit, 0, len(outputURLs))

	for index, outputURL := range outputURLs {
		suffix := "_outfit"
		if isLayeredRequest {
			suffix = fmt.Sprintf("_layer_%d", index)
		}
		// Mock output is already hosted; everything else gets copied
		// into our bucket.
		imgURL := outputURL
		if !h.cfg.MockGeneration {
			generatedImageKey := fmt.Sprintf("gen/%s%s.%s", batch, suffix, fileExtension)
			genOutfitLog.Info().Str("key", generatedImageKey).Msg("downloading generated image")
			uploadResult, err := h.storageClient.DownloadAndUpload(c.Request.Context(), outputURL, generatedImageKey, contentType)
			if err != nil {
				genOutfitLog.Error().Err(err).Msg("failed to store generated image")
				respErr(c, "generate outfit fail")
				return
			}
			imgURL = uploadResult.URL
		}

		// The batch id doubles as the record uuid only for single-output
		// generations.
		outfitUUID := uuid.NewString()
		if len(outputURLs) == 1 {
			outfitUUID = batch
		}

		outfits = append(outfits, models.Outfit{
			UUID:           outfitUUID,
			UserUUID:       models.NewNullString(userUUID),
			CreatedAt:      createdAt,
			BaseImageURL:   resolvedSourceImage,
			ImgURL:         imgURL,
			ImgDescription: resolvedDescription,
			Status:         models.StatusActive,
		})
	}

	err = h.dbClient.InsertOutfitsAndCharge(c.Request.Context(), outfits, userUUID, models.CreditsTransOutfitGeneration, cost)
	if errors.Is(err, database.ErrInsufficientCredits) {
		respErr(c, "Not enough credits")
		return
	}
	if err != nil {
		genOutfitLog.Error().Err(err).Msg("failed to record generation")
		respErr(c, "generate outfit fail")
		return
	}

	genOutfitLog.Info().Str("batch", batch).Int("outputs", len(outfits)).Str("user_uuid", userUUID).Msg("gen-outfit response ready")
	respData(c, models.GenOutfitResponse{Outfits: outfits})
}

func (h *GenOutfitHandler) invoke(ctx context.Context, req *models.GenOutfitRequest, sourceImage, description string, layered bool, fileExtension string) ([]string, error) {
	if layered {
		numLayers := defaultNumLayers
		if req.NumLayers != nil {
			numLayers = *req.NumLayers
		}
		outputQuality := defaultOutputQuality
		if req.OutputQuality != nil {
			outputQuality = *req.OutputQuality
		}
		goFast := true
		if req.GoFast != nil {
			goFast = *req.GoFast
		}
		disableSafetyChecker := true
		if req.DisableSafetyChecker != nil {
			disableSafetyChecker = *req.DisableSafetyChecker
		}

		var prediction *replicate.Prediction
		err := h.replicateClient.RetryWithBackoff(ctx, func() error {
			var runErr error
			prediction, runErr = h.replicateClient.Run(ctx, outfitModel, map[string]interface{}{
				"image":                  sourceImage,
				"go_fast":                goFast,
				"num_layers":             numLayers,
				"description":            description,
				"output_format":          fileExtension,
				"output_quality":         outputQuality,
				"disable_safety_checker": disableSafetyChecker,
			})
			return runErr
		}, providerMaxRetries)
		if err != nil {
			return nil, err
		}
		return prediction.OutputURLs()
	}

	var prediction *replicate.Prediction
	err := h.replicateClient.RetryWithBackoff(ctx, func() error {
		var runErr error
		prediction, runErr = h.replicateClient.Run(ctx, outfitModel, map[string]interface{}{
			"image":         sourceImage,
			"prompt":        description,
			"aspect_ratio":  req.AspectRatio,
			"output_format": "png",
			"resolution":    req.ResolutionInput,
		})
		return runErr
	}, providerMaxRetries)
	if err != nil {
		return nil, err
	}

	urls, err := prediction.OutputURLs()
	if err != nil {
		return nil, err
	}
	// Single-output mode: only the first image counts.
	return urls[:1], nil
}

// ensureRemoteSourceImage rehosts a source URL that points at this host's
// loopback address, so the provider can actually fetch it. Data URLs and
// public URLs pass through unchanged.
func (h *GenOutfitHandler) ensureRemoteSourceImage(c *gin.Context, input, batch string) (string, error) {
	if input == "" || isDataURL(input) {
		return input, nil
	}

	resolved := resolveImageURL(c, input)
	parsed, err := url.Parse(resolved)
	if err != nil {
		return resolved, nil
	}

	if !localHostnames[parsed.Hostname()] {
		return resolved, nil
	}

	extension := extFromURL(parsed.Path)
	uploadKey := fmt.Sprintf("input/%s_source.%s", batch, extension)
	uploadResult, err := h.storageClient.DownloadAndUpload(c.Request.Context(), resolved, uploadKey, contentTypeForExt(extension))
	if err != nil {
		return "", err
	}

	genOutfitLog.Info().Str("resolved_url", resolved).Str("upload_url", uploadResult.URL).Msg("uploaded local source image")
	return uploadResult.URL, nil
}

// resolveImageURL turns a relative path into an absolute URL using the
// request's origin headers.
func resolveImageURL(c *gin.Context, value string) string {
	if isDataURL(value) {
		return value
	}

	if parsed, err := url.Parse(value); err == nil && parsed.IsAbs() {
		return parsed.String()
	}

	origin := requestOrigin(c)
	if origin == "" {
		return value
	}

	base, err := url.Parse(origin)
	if err != nil {
		return value
	}
	ref, err := url.Parse(value)
	if err != nil {
		return value
	}
	return base.ResolveReference(ref).String()
}

func requestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}

	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	if host == "" {
		return ""
	}

	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	return proto + "://" + host
}
