package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/gym"
	"fitpass/internal/ledger"
	"fitpass/internal/member"
	"fitpass/internal/membership"
	"fitpass/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, mailer Mailer) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			gym.NewRepository(db),
			member.NewRepository(db),
			membership.NewRepository(db),
			ledger.NewRepository(db),
			user.NewRepository(db),
			mailer,
		),
	}
}

// @Summary      Book a class slot
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Router       /slots/{slotID}/book [post]
func (h *Handler) BookSlot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid slot id"})
		return
	}

	resp, err := h.service.Book(c.Request.Context(), userID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrNotAMember):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrSlotInPast):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrSlotFull), errors.Is(err, ErrAlreadyBooked):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrMemberNotActive), errors.Is(err, ErrNoActiveMembership):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ledger.ErrInsufficientCredits):
			c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "not enough credits"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary      Cancel a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking id"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, bookingID); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrNotOwnBooking):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrClassAlreadyOver):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "booking cancelled"})
}

// @Summary      Bookings of the caller in a gym
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Router       /gyms/{gymID}/bookings [get]
func (h *Handler) GetMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	bookings, err := h.service.GetMemberBookings(c.Request.Context(), userID, gymID)
	if err != nil {
		if errors.Is(err, ErrNotAMember) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      All bookings of a gym (staff/admin)
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Router       /admin/gyms/{gymID}/bookings [get]
func (h *Handler) GetGymBookings(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid gym id"})
		return
	}

	bookings, err := h.service.GetBookingsByGym(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
