package billing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/member"
	"fitpass/internal/plan"
)

type Handler struct {
	checkout   *Checkout
	syncer     *Syncer
	memberRepo member.Store
	planRepo   plan.Store
}

func NewHandler(checkout *Checkout, syncer *Syncer, memberRepo member.Store, planRepo plan.Store) *Handler {
	return &Handler{checkout: checkout, syncer: syncer, memberRepo: memberRepo, planRepo: planRepo}
}

type checkoutRequest struct {
	LocationID *int `json:"location_id,omitempty"`
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// @Summary      Open a checkout session for a plan
// @Tags         billing
// @Router       /gyms/{gymID}/plans/{planID}/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
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
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan id"})
		return
	}

	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
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

	sess, err := h.checkout.CreateCheckout(c.Request.Context(), gymID, m.ID, planID, req.LocationID)
	if err != nil {
		if errors.Is(err, ErrNoVerifiedAccount) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "gym has no verified merchant account"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{SessionID: sess.ID, URL: sess.URL})
}

// @Summary      Sync a plan into the processor catalog (staff/admin)
// @Tags         billing
// @Router       /admin/plans/{planID}/sync [post]
func (h *Handler) SyncPlan(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan id"})
		return
	}

	target, err := h.planRepo.GetByID(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load plan"})
		return
	}
	if !auth.GymScoped(c, target.GymID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not allowed for this gym"})
		return
	}

	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
	}

	p, err := h.syncer.SyncPlan(c.Request.Context(), planID, req.LocationID)
	if err != nil {
		if errors.Is(err, ErrNoVerifiedAccount) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "gym has no verified merchant account"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to sync plan"})
		return
	}

	c.JSON(http.StatusOK, p)
}
