package image

import (
	"errors"
	"strconv"

	"boards-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	Upload(c *gin.Context)
	Find(c *gin.Context)
	Delete(c *gin.Context)
}

type handler struct {
	service Service
	logger  *zap.SugaredLogger
}

func NewHandler(service Service, logger *zap.Logger) Handler {
	return &handler{service: service, logger: logger.Sugar()}
}

// @Summary Upload a board photo
// @Description Store a photo and return the id to submit as image_id
// @Tags Image
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /images [post]
func (h *handler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondBadRequest(c, "No image provided.")
		return
	}

	img, err := h.service.Store(c.Request.Context(), file)
	if err != nil {
		h.logger.Errorw("Image upload failed", "filename", file.Filename, "error", err)
		utils.RespondInternalError(c)
		return
	}
	utils.RespondSuccess(c, img)
}

// @Summary Fetch a board photo
// @Description Fetch photo metadata and its public URL
// @Tags Image
// @Produce json
// @Param image_id path int true "Image ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /images/{image_id} [get]
func (h *handler) Find(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		utils.RespondBadRequest(c, "Image ID is invalid.")
		return
	}

	img, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, img)
}

// @Summary Delete a board photo
// @Tags Image
// @Produce json
// @Param image_id path int true "Image ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /images/{image_id} [delete]
func (h *handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		utils.RespondBadRequest(c, "Image ID is invalid.")
		return
	}

	img, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, img)
}

func (h *handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		utils.RespondNotFound(c, "The image is not found.")
		return
	}
	h.logger.Errorw("Image request failed", "path", c.Request.URL.Path, "error", err)
	utils.RespondInternalError(c)
}
