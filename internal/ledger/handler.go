package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/logger"
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

// @Summary      Current credit balance for the caller's membership in a gym
// @Tags         credits
// @Router       /gyms/{gymID}/credits [get]
func (h *Handler) GetBalance(c *gin.Context) {
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
		if errors.Is(err, member.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not a member of this gym"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load member"})
		return
	}

	c.JSON(http.StatusOK, api.BalanceResponse{
		MemberID:         m.ID,
		CreditsRemaining: m.CreditsRemaining,
		UnlimitedClasses: m.UnlimitedClasses,
	})
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
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

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.ListByMember(c.Request.Context(), m.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// @Summary      Manual credit adjustment (staff/admin)
// @Tags         credits
// @Router       /admin/members/{memberID}/credits [post]
func (h *Handler) AdjustCredits(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid member id"})
		return
	}

	m, err := h.memberRepo.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
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

	var req AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	balance, err := h.repo.Adjust(c.Request.Context(), memberID, req.Amount, req.Notes, actorID)
	if err != nil {
		if errors.Is(err, ErrNegativeBalance) {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "adjustment would make balance negative"})
			return
		}
		logger.Errorf("Failed to adjust credits for member %d: %v", memberID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to adjust credits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "credits adjusted",
		"credits_remaining": balance,
	})
}

func (h *Handler) ListGymTransactions(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.ListByGym(c.Request.Context(), gymID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}
