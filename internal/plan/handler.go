package plan

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

// @Summary      Create a membership plan
// @Tags         plans
// @Router       /admin/gyms/{gymID}/plans [post]
func (h *Handler) Create(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), gymID, req)
	if err != nil {
		logger.Errorf("Failed to create plan for gym %d: %v", gymID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListByGym(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	// Участники видят только активные тарифы
	activeOnly := c.DefaultQuery("all", "false") != "true"

	plans, err := h.repo.ListByGym(c.Request.Context(), gymID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) Update(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan id"})
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load plan"})
		return
	}
	if !auth.GymScoped(c, existing.GymID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not allowed for this gym"})
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.repo.Update(c.Request.Context(), planID, req)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "plan not found"})
			return
		}
		logger.Errorf("Failed to update plan %d: %v", planID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, p)
}
