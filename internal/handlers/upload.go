package handlers

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/storage"
)

const presignExpiry = 5 * time.Minute

type UploadHandler struct {
	storageClient *storage.Client
}

var uploadLog = logger.New("api/upload")

func NewUploadHandler(storageClient *storage.Client) *UploadHandler {
	return &UploadHandler{storageClient: storageClient}
}

// UploadImage godoc
// @Summary     Upload a base64 image
// @Description Decodes a data URL and stores it, returning the public URL.
// @Tags        storage
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UploadImageRequest true "Data URL image"
// @Success     200 {object} models.Envelope{data=models.UploadImageResponse}
// @Router      /api/upload-image [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	var req models.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		uploadLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.Image == "" {
		respErr(c, "invalid image")
		return
	}

	if middleware.UserUUID(c) == "" {
		respErr(c, "User not authenticated")
		return
	}

	data, contentType, err := decodeDataURL(req.Image)
	if err != nil {
		uploadLog.Warn().Err(err).Msg("failed to decode image")
		respErr(c, "invalid image")
		return
	}

	imageType := req.Type
	if imageType == "" {
		imageType = "base"
	}

	batch := uuid.NewString()
	key := fmt.Sprintf("upload/%s_%s.png", batch, imageType)

	uploadResult, err := h.storageClient.Upload(c.Request.Context(), key, data, contentType)
	if err != nil {
		uploadLog.Error().Err(err).Msg("failed to upload image")
		respErr(c, "upload image fail")
		return
	}

	respData(c, models.UploadImageResponse{
		URL:   uploadResult.URL,
		Key:   uploadResult.Key,
		Batch: batch,
	})
}

// Presign godoc
// @Summary     Presign a direct browser upload
// @Description Returns a short-lived PUT URL plus the public URL the object will have.
// @Tags        storage
// @Accept      json
// @Produce     json
// @Param       request body models.PresignRequest true "Key prefix"
// @Success     200 {object} models.Envelope{data=models.PresignResponse}
// @Router      /api/r2-presign [post]
func (h *UploadHandler) Presign(c *gin.Context) {
	var req models.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		uploadLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}

	prefix := strings.Trim(req.Prefix, "/")
	if prefix == "" {
		prefix = "upload"
	}

	key := fmt.Sprintf("%s/%s_base.png", prefix, uuid.NewString())

	uploadURL, publicURL, err := h.storageClient.PresignPut(c.Request.Context(), key, "image/png", presignExpiry)
	if err != nil {
		uploadLog.Error().Err(err).Msg("failed to presign upload")
		respErr(c, "presign fail")
		return
	}

	respData(c, models.PresignResponse{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: publicURL,
	})
}

// decodeDataURL splits "data:image/png;base64,..." into raw bytes and the
// declared content type. Bare base64 without a prefix is accepted as PNG.
func decodeDataURL(value string) ([]byte, string, error) {
	contentType := "image/png"
	payload := value

	if isDataURL(value) {
		header, rest, ok := strings.Cut(value, ",")
		if !ok {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		payload = rest
		header = strings.TrimPrefix(header, "data:")
		if mime, _, found := strings.Cut(header, ";"); found && mime != "" {
			contentType = mime
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, contentType, nil
}
