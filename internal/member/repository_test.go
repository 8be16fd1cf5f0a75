package member

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMemberMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func memberColumns() []string {
	return []string{"id", "gym_id", "user_id", "status", "credits_remaining", "unlimited_classes", "created_at", "updated_at"}
}

func TestJoin_UpsertsMember(t *testing.T) {
	repo, mock, close := setupMemberMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members (gym_id, user_id, status)")).
		WithArgs(1, 10).
		WillReturnRows(sqlmock.NewRows(memberColumns()).AddRow(5, 1, 10, "active", nil, false, now, now))

	m, err := repo.Join(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 5, m.ID)
	require.Equal(t, StatusActive, m.Status)
	require.Nil(t, m.CreditsRemaining)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupMemberMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM members WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, close := setupMemberMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(StatusSuspended, 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 42, StatusSuspended)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestCreditLimited(t *testing.T) {
	credits := int64(5)

	limited := &Member{CreditsRemaining: &credits}
	require.True(t, limited.CreditLimited())

	unlimitedFlag := &Member{CreditsRemaining: &credits, UnlimitedClasses: true}
	require.False(t, unlimitedFlag.CreditLimited())

	// NULL credits = не ограничен кредитами
	nullCredits := &Member{CreditsRemaining: nil}
	require.False(t, nullCredits.CreditLimited())
}
