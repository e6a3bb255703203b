package board

import (
	"errors"
	"strconv"

	"boards-backend/internal/middleware"
	"boards-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	ListAll(c *gin.Context)
	ListForBody(c *gin.Context)
	Create(c *gin.Context)
	FindOrCurrent(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type handler struct {
	service Service
	logger  *zap.SugaredLogger
}

func NewHandler(service Service, logger *zap.Logger) Handler {
	return &handler{service: service, logger: logger.Sugar()}
}

// @Summary List all boards
// @Description List every board, sorted by the given key and direction
// @Tags Board
// @Produce json
// @Param sort query string false "Sort key, defaults to id"
// @Param direction query string false "asc or desc"
// @Success 200 {object} utils.Response
// @Router /boards [get]
func (h *handler) ListAll(c *gin.Context) {
	sorting := SortingFromQuery(c.Query("sort"), c.Query("direction"))

	boards, err := h.service.ListBoards(c.Request.Context(), ListFilter{}, sorting)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, boards)
}

// @Summary List boards of a body
// @Description List the boards belonging to one body
// @Tags Board
// @Produce json
// @Param body_id path int true "Body ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /bodies/{body_id}/boards [get]
func (h *handler) ListForBody(c *gin.Context) {
	bodyID, ok := parseID(c, "body_id")
	if !ok {
		utils.RespondBadRequest(c, "Body ID is invalid.")
		return
	}

	sorting := SortingFromQuery(c.Query("sort"), c.Query("direction"))
	boards, err := h.service.ListBoards(c.Request.Context(), ListFilter{BodyID: &bodyID}, sorting)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(boards) == 0 {
		utils.RespondNotFound(c, "There are no boards for this body.")
		return
	}
	utils.RespondSuccess(c, boards)
}

// @Summary Create a board
// @Description Create a board for a body and notify the distribution list
// @Tags Board
// @Accept json
// @Produce json
// @Param body_id path int true "Body ID"
// @Param board body BoardInput true "Board fields"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 422 {object} utils.Response
// @Router /bodies/{body_id}/boards [post]
func (h *handler) Create(c *gin.Context) {
	var input BoardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBadRequest(c, "Invalid JSON.")
		return
	}

	perms := middleware.GetPermissions(c)
	token := middleware.GetToken(c)

	created, err := h.service.CreateBoard(c.Request.Context(), token, perms, &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, created)
}

// @Summary Find a board
// @Description Fetch a single board, or the currently active boards when the id segment is "current"
// @Tags Board
// @Produce json
// @Param body_id path int true "Body ID"
// @Param board_id path string true "Board ID or `current`"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /bodies/{body_id}/boards/{board_id} [get]
func (h *handler) FindOrCurrent(c *gin.Context) {
	if c.Param("board_id") == "current" {
		h.listCurrent(c)
		return
	}

	boardID, ok := parseID(c, "board_id")
	if !ok {
		utils.RespondBadRequest(c, "Board ID is invalid.")
		return
	}

	board, err := h.service.GetBoard(c.Request.Context(), uint64(boardID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, board)
}

func (h *handler) listCurrent(c *gin.Context) {
	bodyID, ok := parseID(c, "body_id")
	if !ok {
		utils.RespondBadRequest(c, "Body ID is invalid.")
		return
	}

	today := Today()
	boards, err := h.service.ListBoards(c.Request.Context(), ListFilter{BodyID: &bodyID, CurrentOn: &today}, Sorting{Field: "start_date", Direction: "desc"})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(boards) == 0 {
		utils.RespondNotFound(c, "There is no current board.")
		return
	}
	utils.RespondSuccess(c, boards)
}

// @Summary Update a board
// @Description Merge the provided fields onto an existing board
// @Tags Board
// @Accept json
// @Produce json
// @Param body_id path int true "Body ID"
// @Param board_id path int true "Board ID"
// @Param board body BoardInput true "Fields to change"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 422 {object} utils.Response
// @Router /bodies/{body_id}/boards/{board_id} [put]
func (h *handler) Update(c *gin.Context) {
	boardID, ok := parseID(c, "board_id")
	if !ok {
		utils.RespondBadRequest(c, "Board ID is invalid.")
		return
	}

	var input BoardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBadRequest(c, "Invalid JSON.")
		return
	}

	perms := middleware.GetPermissions(c)
	board, err := h.service.UpdateBoard(c.Request.Context(), perms, uint64(boardID), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, board)
}

// @Summary Delete a board
// @Description Remove a board permanently
// @Tags Board
// @Produce json
// @Param body_id path int true "Body ID"
// @Param board_id path int true "Board ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /bodies/{body_id}/boards/{board_id} [delete]
func (h *handler) Delete(c *gin.Context) {
	boardID, ok := parseID(c, "board_id")
	if !ok {
		utils.RespondBadRequest(c, "Board ID is invalid.")
		return
	}

	perms := middleware.GetPermissions(c)
	board, err := h.service.DeleteBoard(c.Request.Context(), perms, uint64(boardID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondSuccess(c, board)
}

func (h *handler) respondError(c *gin.Context, err error) {
	var validationErrs ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		utils.RespondValidationError(c, validationErrs)
	case errors.Is(err, ErrForbidden):
		utils.RespondForbidden(c, "You are not allowed to manage boards.")
	case errors.Is(err, ErrNotFound):
		utils.RespondNotFound(c, "The board is not found.")
	default:
		h.logger.Errorw("Board request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		utils.RespondInternalError(c)
	}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
