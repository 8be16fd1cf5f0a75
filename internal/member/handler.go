package member

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/logger"
)

type Handler struct {
	repo Store
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// @Summary      Join a gym as a member
// @Tags         members
// @Router       /gyms/{gymID}/join [post]
func (h *Handler) Join(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	m, err := h.repo.Join(c.Request.Context(), gymID, userID)
	if err != nil {
		logger.Errorf("Failed to join gym %d for user %d: %v", gymID, userID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to join gym"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListByGym(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	members, err := h.repo.ListByGym(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid member id"})
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load member"})
		return
	}
	if !auth.GymScoped(c, m.GymID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not allowed for this gym"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), memberID, req.Status); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update member"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "member updated"})
}
