package gym

import (
	"net/http"
	"strconv"
	"time"

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

// @Summary      Create a gym
// @Tags         gyms
// @Accept       json
// @Produce      json
// @Router       /admin/gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := h.repo.CreateGym(c.Request.Context(), req.Name, req.City, req.Currency)
	if err != nil {
		logger.Errorf("Failed to create gym: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.repo.GetAllGyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load gyms"})
		return
	}
	c.JSON(http.StatusOK, gyms)
}

// @Summary      Attach a Stripe account to a gym (legacy single-location tenants)
// @Tags         gyms
// @Router       /admin/gyms/{gymID}/account [post]
func (h *Handler) ConnectGymAccount(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	var req ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.ConnectGymAccount(c.Request.Context(), gymID, req.StripeAccountRef, req.OnboardingComplete); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to connect account"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "account connected"})
}

func (h *Handler) CreateLocation(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	loc, err := h.repo.CreateLocation(c.Request.Context(), gymID, req.Name, req.Address, req.Currency, req.IsPrimary)
	if err != nil {
		logger.Errorf("Failed to create location for gym %d: %v", gymID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create location"})
		return
	}

	c.JSON(http.StatusCreated, loc)
}

func (h *Handler) ListLocations(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	locs, err := h.repo.ListLocations(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load locations"})
		return
	}
	c.JSON(http.StatusOK, locs)
}

func (h *Handler) ConnectLocationAccount(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("locationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid location id"})
		return
	}

	loc, err := h.repo.GetLocationByID(c.Request.Context(), locationID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "location not found"})
		return
	}
	if !auth.GymScoped(c, loc.GymID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not allowed for this gym"})
		return
	}

	var req ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.repo.ConnectLocationAccount(c.Request.Context(), locationID, req.StripeAccountRef, req.OnboardingComplete); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to connect account"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "account connected"})
}

func (h *Handler) CreateClassSlot(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	var req CreateClassSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_time must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_time must be RFC3339"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_time must be after start_time"})
		return
	}

	slot, err := h.repo.CreateClassSlot(c.Request.Context(), gymID, req)
	if err != nil {
		logger.Errorf("Failed to create class slot for gym %d: %v", gymID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create class slot"})
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ListClassSlots(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	slots, err := h.repo.ListClassSlots(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load class slots"})
		return
	}
	c.JSON(http.StatusOK, slots)
}
