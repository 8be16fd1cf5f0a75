package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fitpass/internal/gym"
	"fitpass/internal/ledger"
	"fitpass/internal/logger"
	"fitpass/internal/member"
	"fitpass/internal/membership"
	"fitpass/internal/metrics"
	"fitpass/internal/user"
)

var (
	ErrSlotNotFound       = errors.New("class slot not found")
	ErrSlotInPast         = errors.New("cannot book a class in the past")
	ErrSlotFull           = errors.New("class slot is full")
	ErrAlreadyBooked      = errors.New("member already has a booking for this class")
	ErrNotAMember         = errors.New("not a member of this gym")
	ErrMemberNotActive    = errors.New("membership is not active")
	ErrNoActiveMembership = errors.New("no active membership")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotOwnBooking      = errors.New("can only cancel own bookings")
	ErrClassAlreadyOver   = errors.New("cannot cancel a class that already started")
)

// Mailer queues outbound booking notifications.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, email, name, className string, when time.Time) error
	SendBookingCancellation(ctx context.Context, email, name, className string) error
}

type Service interface {
	Book(ctx context.Context, userID, slotID int) (*BookSlotResponse, error)
	Cancel(ctx context.Context, userID, bookingID int) error
	GetMemberBookings(ctx context.Context, userID, gymID int) ([]Booking, error)
	GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error)
}

type service struct {
	bookingRepo    Store
	gymRepo        gym.Store
	memberRepo     member.Store
	membershipRepo membership.Store
	ledgerRepo     ledger.Store
	userRepo       user.Store
	mailer         Mailer
}

func NewService(
	bookingRepo Store,
	gymRepo gym.Store,
	memberRepo member.Store,
	membershipRepo membership.Store,
	ledgerRepo ledger.Store,
	userRepo user.Store,
	mailer Mailer,
) Service {
	return &service{
		bookingRepo:    bookingRepo,
		gymRepo:        gymRepo,
		memberRepo:     memberRepo,
		membershipRepo: membershipRepo,
		ledgerRepo:     ledgerRepo,
		userRepo:       userRepo,
		mailer:         mailer,
	}
}

// Book списывает кредиты ДО создания брони: неудачное списание не
// оставляет брони, неудачное создание брони возвращает кредиты.
func (s *service) Book(ctx context.Context, userID, slotID int) (*BookSlotResponse, error) {
	slot, err := s.gymRepo.GetClassSlotByID(ctx, slotID)
	if err != nil {
		return nil, ErrSlotNotFound
	}

	if slot.StartTime.Before(time.Now()) {
		return nil, ErrSlotInPast
	}

	m, err := s.memberRepo.GetByGymAndUser(ctx, slot.GymID, userID)
	if err != nil {
		return nil, ErrNotAMember
	}
	if m.Status != member.StatusActive {
		return nil, ErrMemberNotActive
	}

	// Статус членства проверяется отдельно от кредитов: у безлимитных
	// участников списания нет, и отменённая подписка иначе давала бы
	// бесплатные брони навсегда.
	eligible, err := s.membershipRepo.HasBookingEligible(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		metrics.RecordBooking("no_membership")
		return nil, ErrNoActiveMembership
	}

	bookedCount, err := s.bookingRepo.CountActiveBookingsForSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if bookedCount >= slot.Capacity {
		metrics.RecordBooking("slot_full")
		return nil, ErrSlotFull
	}

	hasBooking, err := s.bookingRepo.MemberHasBookingForSlot(ctx, m.ID, slotID)
	if err != nil {
		return nil, err
	}
	if hasBooking {
		return nil, ErrAlreadyBooked
	}

	reference := uuid.NewString()
	balance, err := s.ledgerRepo.Debit(ctx, m.ID, int64(slot.CreditCost), reference, slot.Title)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			metrics.RecordBooking("insufficient_credits")
		}
		return nil, err
	}

	b, err := s.bookingRepo.CreateBooking(ctx, slot.GymID, m.ID, slotID, slot.CreditCost, reference)
	if err != nil {
		if _, refundErr := s.ledgerRepo.Refund(ctx, m.ID, int64(slot.CreditCost), reference, slot.Title); refundErr != nil {
			logger.Errorf("Failed to refund credits after booking failure (member %d, ref %s): %v", m.ID, reference, refundErr)
		}
		return nil, err
	}

	metrics.RecordBooking("booked")

	if u, err := s.userRepo.FindByID(ctx, userID); err == nil {
		if err := s.mailer.SendBookingConfirmation(ctx, u.Email, u.Name, slot.Title, slot.StartTime); err != nil {
			logger.Errorf("Failed to queue booking confirmation: %v", err)
		}
	}

	return &BookSlotResponse{
		Booking:          b,
		CreditsSpent:     slot.CreditCost,
		CreditsRemaining: balance,
	}, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int) error {
	b, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return ErrBookingNotFound
	}

	m, err := s.memberRepo.GetByID(ctx, b.MemberID)
	if err != nil {
		return ErrBookingNotFound
	}
	if m.UserID != userID {
		return ErrNotOwnBooking
	}

	slot, err := s.gymRepo.GetClassSlotByID(ctx, b.ClassSlotID)
	if err != nil {
		return ErrSlotNotFound
	}
	if slot.StartTime.Before(time.Now()) {
		return ErrClassAlreadyOver
	}

	if err := s.bookingRepo.CancelBooking(ctx, bookingID); err != nil {
		if errors.Is(err, ErrBookingNotFoundOrCancelled) {
			return ErrBookingNotFound
		}
		return err
	}

	if b.CreditCost > 0 {
		if _, err := s.ledgerRepo.Refund(ctx, m.ID, int64(b.CreditCost), b.Reference, slot.Title); err != nil {
			logger.Errorf("Failed to refund credits for cancelled booking %d: %v", bookingID, err)
		}
	}

	metrics.RecordBooking("cancelled")

	if u, err := s.userRepo.FindByID(ctx, userID); err == nil {
		if err := s.mailer.SendBookingCancellation(ctx, u.Email, u.Name, slot.Title); err != nil {
			logger.Errorf("Failed to queue cancellation notice: %v", err)
		}
	}

	return nil
}

func (s *service) GetMemberBookings(ctx context.Context, userID, gymID int) ([]Booking, error) {
	m, err := s.memberRepo.GetByGymAndUser(ctx, gymID, userID)
	if err != nil {
		return nil, ErrNotAMember
	}
	return s.bookingRepo.GetMemberBookings(ctx, m.ID)
}

func (s *service) GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error) {
	return s.bookingRepo.GetBookingsByGym(ctx, gymID)
}
