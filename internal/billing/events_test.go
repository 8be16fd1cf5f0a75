package billing

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestEventClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	repo := NewEventRepository(sqlxDB)

	insert := regexp.QuoteMeta("INSERT INTO webhook_events (id, type) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING")

	mock.ExpectExec(insert).
		WithArgs("evt_1", "invoice.paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	claimed, err := repo.Claim(context.Background(), "evt_1", "invoice.paid")
	require.NoError(t, err)
	require.True(t, claimed)

	// Повтор: ON CONFLICT DO NOTHING, ноль затронутых строк.
	mock.ExpectExec(insert).
		WithArgs("evt_1", "invoice.paid").
		WillReturnResult(sqlmock.NewResult(0, 0))
	claimed, err = repo.Claim(context.Background(), "evt_1", "invoice.paid")
	require.NoError(t, err)
	require.False(t, claimed)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM webhook_events WHERE id = $1")).
		WithArgs("evt_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Release(context.Background(), "evt_1"))

	require.NoError(t, mock.ExpectationsWereMet())
}
