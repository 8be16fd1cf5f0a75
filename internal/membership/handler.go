package membership

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/member"
)

type Handler struct {
	repo       Store
	memberRepo member.Store
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo:       NewRepository(db),
		memberRepo: member.NewRepository(db),
	}
}

// @Summary      Memberships of the caller in a gym
// @Tags         memberships
// @Router       /gyms/{gymID}/memberships [get]
func (h *Handler) ListMyMemberships(c *gin.Context) {
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

	m, err := h.memberRepo.GetByGymAndUser(c.Request.Context(), gymID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not a member of this gym"})
		return
	}

	ms, err := h.repo.ListByMember(c.Request.Context(), m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load memberships"})
		return
	}
	c.JSON(http.StatusOK, ms)
}
