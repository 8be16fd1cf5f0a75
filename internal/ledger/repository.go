package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fitpass/internal/metrics"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNegativeBalance     = errors.New("resulting balance would be negative")
)

type Store interface {
	CanBook(ctx context.Context, memberID int, cost int64) (bool, error)
	Debit(ctx context.Context, memberID int, amount int64, bookingRef, notes string) (*int64, error)
	Refund(ctx context.Context, memberID int, amount int64, bookingRef, notes string) (*int64, error)
	Adjust(ctx context.Context, memberID int, amount int64, notes string, actorID int) (*int64, error)
	ListByMember(ctx context.Context, memberID, limit, offset int) ([]CreditTransaction, error)
	ListByGym(ctx context.Context, gymID, limit, offset int) ([]CreditTransaction, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// memberRow is the slice of the members table the ledger cares about.
type memberRow struct {
	ID               int    `db:"id"`
	GymID            int    `db:"gym_id"`
	CreditsRemaining *int64 `db:"credits_remaining"`
	UnlimitedClasses bool   `db:"unlimited_classes"`
}

func (r *Repository) CanBook(ctx context.Context, memberID int, cost int64) (bool, error) {
	var m memberRow
	err := r.db.GetContext(ctx, &m, `
		SELECT id, gym_id, credits_remaining, unlimited_classes
		FROM members
		WHERE id = $1
	`, memberID)
	if err != nil {
		return false, err
	}

	if m.UnlimitedClasses || m.CreditsRemaining == nil {
		return true, nil
	}
	return *m.CreditsRemaining >= cost, nil
}

func (r *Repository) Debit(ctx context.Context, memberID int, amount int64, bookingRef, notes string) (*int64, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive")
	}
	return r.apply(ctx, memberID, -amount, TypeBooking, "booking", bookingRef, notes, nil)
}

func (r *Repository) Refund(ctx context.Context, memberID int, amount int64, bookingRef, notes string) (*int64, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("refund amount must be positive")
	}
	return r.apply(ctx, memberID, amount, TypeCancellationRefund, "booking", bookingRef, notes, nil)
}

func (r *Repository) Adjust(ctx context.Context, memberID int, amount int64, notes string, actorID int) (*int64, error) {
	return r.apply(ctx, memberID, amount, TypeManualAdjustment, "staff", "", notes, &actorID)
}

// apply выполняет чтение баланса, запись баланса и вставку транзакции
// в одной транзакции БД; FOR UPDATE сериализует конкурирующие списания.
func (r *Repository) apply(
	ctx context.Context,
	memberID int,
	amount int64,
	txType TransactionType,
	refType, refID, notes string,
	createdBy *int,
) (*int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var m memberRow
	err = tx.QueryRowxContext(ctx, `
		SELECT id, gym_id, credits_remaining, unlimited_classes
		FROM members
		WHERE id = $1
		FOR UPDATE
	`, memberID).StructScan(&m)
	if err != nil {
		return nil, err
	}

	// Unlimited members never touch the balance and get no ledger rows
	// on debits and refunds: their bookings are not credit movements.
	// Ручные корректировки пишутся всегда, NULL считается нулём —
	// иначе персонал не смог бы выдать кредиты участнику без баланса.
	if txType != TypeManualAdjustment && (m.UnlimitedClasses || m.CreditsRemaining == nil) {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return m.CreditsRemaining, nil
	}

	var current int64
	if m.CreditsRemaining != nil {
		current = *m.CreditsRemaining
	}
	newBalance := current + amount
	if newBalance < 0 {
		if txType == TypeManualAdjustment {
			return nil, ErrNegativeBalance
		}
		return nil, ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE members
		SET credits_remaining = $1, updated_at = NOW()
		WHERE id = $2
	`, newBalance, m.ID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (gym_id, member_id, amount, balance_after, type, reference_type, reference_id, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.GymID, m.ID, amount, newBalance, txType, refType, refID, notes, createdBy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordCreditTransaction(string(txType))
	return &newBalance, nil
}

func (r *Repository) ListByMember(ctx context.Context, memberID, limit, offset int) ([]CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	txs := []CreditTransaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM credit_transactions
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, memberID, limit, offset)
	return txs, err
}

func (r *Repository) ListByGym(ctx context.Context, gymID, limit, offset int) ([]CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	txs := []CreditTransaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM credit_transactions
		WHERE gym_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, gymID, limit, offset)
	return txs, err
}
