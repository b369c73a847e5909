package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"user-rest-service/internal/usecase/user"
	apperrors "user-rest-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for the /user resource.
// Failures are attached with c.Error and rendered by middleware.ErrorHandler.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// FindByID handles GET /user/:id
func (h *UserHandler) FindByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	u, err := h.uc.FindByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.FromEntity(u))
}

// FindAll handles GET /user
func (h *UserHandler) FindAll(c *gin.Context) {
	users, err := h.uc.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.FromEntities(users))
}

// Create handles POST /user. The response has no body; Location points at the new user.
func (h *UserHandler) Create(c *gin.Context) {
	var dto user.UserDTO
	if !h.bindBody(c, &dto) {
		return
	}

	u, err := h.uc.Create(c.Request.Context(), dto)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), u.ID))
	c.Status(http.StatusCreated)
}

// Update handles PUT /user/:id. The path id always replaces any id in the body.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var dto user.UserDTO
	if !h.bindBody(c, &dto) {
		return
	}
	dto.ID = id

	u, err := h.uc.Update(c.Request.Context(), dto)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.FromEntity(u))
}

// Delete handles DELETE /user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warn("invalid user id", zap.String("id", idStr))
		_ = c.Error(apperrors.NewValidationError("", apperrors.MsgInvalidID))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) bindBody(c *gin.Context, dto *user.UserDTO) bool {
	if err := c.ShouldBindJSON(dto); err != nil {
		h.log.Warn("invalid user body", zap.Error(err))
		_ = c.Error(apperrors.NewValidationError("", apperrors.MsgInvalidBody))
		return false
	}
	return true
}
