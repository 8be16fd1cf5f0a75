package ledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupLedgerMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

const selectForUpdate = "SELECT id, gym_id, credits_remaining, unlimited_classes FROM members WHERE id = $1 FOR UPDATE"

func memberRows(id, gymID int, credits *int64, unlimited bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "gym_id", "credits_remaining", "unlimited_classes"}).
		AddRow(id, gymID, credits, unlimited)
}

func expectApply(mock sqlmock.Sqlmock, memberID, gymID int, before, amount int64, txType interface{}) {
	after := before + amount
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, gymID, &before, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET credits_remaining = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(after, memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credit_transactions")).
		WithArgs(gymID, memberID, amount, after, txType, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestDebit_Success(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	expectApply(mock, 20, 3, 5, -1, TypeBooking)

	balance, err := repo.Debit(context.Background(), 20, 1, "booking-abc", "")
	require.NoError(t, err)
	require.NotNil(t, balance)
	require.Equal(t, int64(4), *balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_InsufficientCredits(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	credits := int64(1)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, &credits, false))
	mock.ExpectRollback()

	_, err := repo.Debit(context.Background(), 20, 2, "booking-abc", "")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_UnlimitedMemberIsNoOp(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	credits := int64(7)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, &credits, true))
	// no UPDATE, no INSERT
	mock.ExpectCommit()

	balance, err := repo.Debit(context.Background(), 20, 1, "booking-abc", "")
	require.NoError(t, err)
	require.Equal(t, int64(7), *balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_NullCreditsIsNoOp(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, nil, false))
	mock.ExpectCommit()

	balance, err := repo.Debit(context.Background(), 20, 1, "booking-abc", "")
	require.NoError(t, err)
	require.Nil(t, balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_Success(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	expectApply(mock, 20, 3, 4, 1, TypeCancellationRefund)

	balance, err := repo.Refund(context.Background(), 20, 1, "booking-abc", "class cancelled")
	require.NoError(t, err)
	require.Equal(t, int64(5), *balance)
}

func TestAdjust_NegativeBalanceRefused(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	credits := int64(2)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, &credits, false))
	mock.ExpectRollback()

	_, err := repo.Adjust(context.Background(), 20, -5, "correction", 1)
	require.ErrorIs(t, err, ErrNegativeBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjust_RecordsActor(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	credits := int64(2)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, &credits, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET credits_remaining = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(5), 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credit_transactions")).
		WithArgs(3, 20, int64(3), int64(5), TypeManualAdjustment, "staff", "", "comp classes", 99).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := repo.Adjust(context.Background(), 20, 3, "comp classes", 99)
	require.NoError(t, err)
	require.Equal(t, int64(5), *balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjust_SeedsNullBalance(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	// NULL трактуется как ноль только для ручных корректировок:
	// иначе участнику без баланса нельзя было бы выдать кредиты.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, nil, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET credits_remaining = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(10), 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credit_transactions")).
		WithArgs(3, 20, int64(10), int64(10), TypeManualAdjustment, sqlmock.AnyArg(), sqlmock.AnyArg(), "welcome pack", 99).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := repo.Adjust(context.Background(), 20, 10, "welcome pack", 99)
	require.NoError(t, err)
	require.Equal(t, int64(10), *balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjust_UnlimitedMemberStillWrites(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	credits := int64(4)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectForUpdate)).
		WithArgs(20).
		WillReturnRows(memberRows(20, 3, &credits, true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET credits_remaining = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(6), 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credit_transactions")).
		WithArgs(3, 20, int64(2), int64(6), TypeManualAdjustment, sqlmock.AnyArg(), sqlmock.AnyArg(), "correction", 99).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := repo.Adjust(context.Background(), 20, 2, "correction", 99)
	require.NoError(t, err)
	require.Equal(t, int64(6), *balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Ledger conservation: после цепочки операций balance_after последней
// транзакции равен стартовому балансу плюс сумма всех amount.
func TestLedgerConservation(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	start := int64(10)
	amounts := []int64{-3, 2, -5}

	running := start
	for _, a := range amounts {
		expectApply(mock, 20, 3, running, a, sqlmock.AnyArg())
		running += a
	}

	ctx := context.Background()
	b1, err := repo.Debit(ctx, 20, 3, "b1", "")
	require.NoError(t, err)
	require.Equal(t, int64(7), *b1)

	b2, err := repo.Refund(ctx, 20, 2, "b1", "")
	require.NoError(t, err)
	require.Equal(t, int64(9), *b2)

	b3, err := repo.Debit(ctx, 20, 5, "b2", "")
	require.NoError(t, err)
	require.Equal(t, int64(4), *b3)

	var sum int64
	for _, a := range amounts {
		sum += a
	}
	require.Equal(t, start+sum, *b3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCanBook(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	query := regexp.QuoteMeta("SELECT id, gym_id, credits_remaining, unlimited_classes FROM members WHERE id = $1")

	credits := int64(2)
	mock.ExpectQuery(query).WithArgs(20).WillReturnRows(memberRows(20, 3, &credits, false))
	ok, err := repo.CanBook(context.Background(), 20, 2)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(query).WithArgs(20).WillReturnRows(memberRows(20, 3, &credits, false))
	ok, err = repo.CanBook(context.Background(), 20, 3)
	require.NoError(t, err)
	require.False(t, ok)

	zero := int64(0)
	mock.ExpectQuery(query).WithArgs(20).WillReturnRows(memberRows(20, 3, &zero, true))
	ok, err = repo.CanBook(context.Background(), 20, 1)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(query).WithArgs(20).WillReturnRows(memberRows(20, 3, nil, false))
	ok, err = repo.CanBook(context.Background(), 20, 1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestListByMember(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	now := time.Now()
	cols := []string{"id", "gym_id", "member_id", "amount", "balance_after", "type", "reference_type", "reference_id", "notes", "created_by", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM credit_transactions WHERE member_id = $1")).
		WithArgs(20, 50, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 3, 20, -1, 9, "booking", "booking", "ref-2", "", nil, now).
			AddRow(1, 3, 20, 10, 10, "purchase", "membership", "ref-1", "", nil, now.Add(-time.Hour)))

	txs, err := repo.ListByMember(context.Background(), 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, TypeBooking, txs[0].Type)
}
