package handlers

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/models"
	"outfit-studio-backend/internal/storage"
)

type DownloadHandler struct {
	storageClient *storage.Client
	httpClient    *http.Client
}

var downloadLog = logger.New("api/download")

func NewDownloadHandler(storageClient *storage.Client) *DownloadHandler {
	return &DownloadHandler{
		storageClient: storageClient,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// DownloadWallpaper godoc
// @Summary     Download a wallpaper as an attachment
// @Description Streams the remote image with a Content-Disposition header so
// @Description the browser saves it instead of rendering it.
// @Tags        storage
// @Produce     octet-stream
// @Param       url  query string true  "Image URL"
// @Param       name query string false "Download filename"
// @Success     200
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/wallpaper/download [get]
func (h *DownloadHandler) DownloadWallpaper(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "url is required"})
		return
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid url"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid url"})
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		downloadLog.Error().Err(err).Str("url", rawURL).Msg("failed to fetch wallpaper")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "failed to fetch image"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		downloadLog.Error().Int("status", resp.StatusCode).Str("url", rawURL).Msg("upstream returned non-200")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "failed to fetch image"})
		return
	}

	name := c.Query("name")
	if name == "" {
		name = fileNameFromURL(parsed.Path)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", attachmentDisposition(name))
	if length := resp.Header.Get("Content-Length"); length != "" {
		c.Header("Content-Length", length)
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		downloadLog.Warn().Err(err).Msg("client aborted wallpaper download")
	}
}

// DownloadZip godoc
// @Summary     Download a set of images as one zip
// @Description Fetches each listed URL and streams a zip archive.
// @Tags        storage
// @Accept      json
// @Produce     application/zip
// @Param       request body models.DownloadZipRequest true "Images to bundle"
// @Success     200
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/qwen-image-layered/download-zip [post]
func (h *DownloadHandler) DownloadZip(c *gin.Context) {
	var req models.DownloadZipRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Images) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "images are required"})
		return
	}

	baseName := req.BaseName
	if baseName == "" {
		baseName = "layers"
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", attachmentDisposition(baseName+".zip"))
	c.Status(http.StatusOK)

	zipWriter := zip.NewWriter(c.Writer)
	defer zipWriter.Close()

	for index, item := range req.Images {
		parsed, err := url.Parse(item.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			downloadLog.Warn().Str("url", item.URL).Msg("skipping non-http zip entry")
			continue
		}

		data, err := h.storageClient.Fetch(c.Request.Context(), item.URL)
		if err != nil {
			// A bad entry should not sink the rest of the archive.
			downloadLog.Warn().Err(err).Str("url", item.URL).Msg("skipping unfetchable zip entry")
			continue
		}

		entryName := item.Name
		if entryName == "" {
			entryName = fmt.Sprintf("%s_%d.%s", baseName, index, extFromURL(item.URL))
		}

		entry, err := zipWriter.Create(entryName)
		if err != nil {
			downloadLog.Error().Err(err).Msg("failed to create zip entry")
			return
		}
		if _, err := entry.Write(data); err != nil {
			downloadLog.Warn().Err(err).Msg("client aborted zip download")
			return
		}
	}
}

// attachmentDisposition builds a Content-Disposition value with an ASCII
// fallback filename plus an RFC 5987 filename* for non-ASCII names.
func attachmentDisposition(name string) string {
	fallback := make([]rune, 0, len(name))
	ascii := true
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			fallback = append(fallback, '_')
			ascii = false
			continue
		}
		fallback = append(fallback, r)
	}

	if ascii {
		return fmt.Sprintf("attachment; filename=%q", name)
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", string(fallback), url.PathEscape(name))
}

func fileNameFromURL(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	if name == "" {
		return "wallpaper.png"
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}
