package handlers

import (
	"github.com/gin-gonic/gin"
	"outfit-studio-backend/internal/models"
)

// GenLayered godoc
// @Summary     Decompose an image into layers
// @Description Runs layered decomposition on the given image. Costs credits.
// @Tags        generation
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenLayeredRequest true "Decomposition parameters"
// @Success     200 {object} models.Envelope{data=models.GenOutfitResponse}
// @Router      /api/gen-qwen-image-layered [post]
func (h *GenOutfitHandler) GenLayered(c *gin.Context) {
	var req models.GenLayeredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		genOutfitLog.Warn().Err(err).Msg("invalid request body")
		respErr(c, "invalid request body")
		return
	}
	if req.Image == "" {
		respErr(c, "invalid image")
		return
	}

	h.generate(c, &models.GenOutfitRequest{
		Image:         req.Image,
		Description:   req.Description,
		NumLayers:     req.NumLayers,
		GoFast:        req.GoFast,
		OutputFormat:  req.OutputFormat,
		OutputQuality: req.OutputQuality,
	})
}
