package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupBookingMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func TestCreateBooking(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(1, 5, 3, 2, "ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gym_id", "member_id", "class_slot_id", "status", "credit_cost", "reference", "created_at"}).
			AddRow(9, 1, 5, 3, "booked", 2, "ref-1", now))

	b, err := repo.CreateBooking(context.Background(), 1, 5, 3, 2, "ref-1")
	require.NoError(t, err)
	require.Equal(t, 9, b.ID)
	require.Equal(t, "booked", b.Status)
	require.Equal(t, "ref-1", b.Reference)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = 'cancelled' WHERE id = $1 AND status = 'booked'")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelBooking(context.Background(), 9)
	require.ErrorIs(t, err, ErrBookingNotFoundOrCancelled)
}

func TestCountActiveBookingsForSlot(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountActiveBookingsForSlot(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 7, count)
}

func TestMemberHasBookingForSlot(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(5, 3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.MemberHasBookingForSlot(context.Background(), 5, 3)
	require.NoError(t, err)
	require.True(t, has)
}
