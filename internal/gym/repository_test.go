package gym

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupGymMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func locationColumns() []string {
	return []string{"id", "gym_id", "name", "address", "is_primary", "active", "stripe_account_ref", "onboarding_complete", "currency", "created_at"}
}

func TestCreateGym_DefaultsCurrency(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gyms (name, city, currency)")).
		WithArgs("Iron Temple", "Almaty", "usd").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "city", "stripe_account_ref", "onboarding_complete", "currency", "created_at"}).
			AddRow(1, "Iron Temple", "Almaty", "", false, "usd", time.Now()))

	g, err := repo.CreateGym(context.Background(), "Iron Temple", "Almaty", "")
	require.NoError(t, err)
	require.Equal(t, 1, g.ID)
	require.Equal(t, "usd", g.Currency)
}

func TestConnectLocationAccount(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE gym_locations SET stripe_account_ref = $1, onboarding_complete = $2 WHERE id = $3")).
		WithArgs("acct_123", true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ConnectLocationAccount(context.Background(), 7, "acct_123", true)
	require.NoError(t, err)
}

func TestListLocations_PrimaryFirst(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY is_primary DESC, id")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(locationColumns()).
			AddRow(2, 3, "Downtown", "", true, true, "acct_main", true, "usd", now).
			AddRow(5, 3, "Uptown", "", false, true, "acct_up", true, "usd", now))

	locs, err := repo.ListLocations(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	require.True(t, locs[0].IsPrimary)
}

func TestListClassSlots_ComputesAvailability(t *testing.T) {
	repo, mock, close := setupGymMock(t)
	defer close()

	now := time.Now()
	cols := []string{"id", "gym_id", "location_id", "title", "start_time", "end_time", "capacity", "credit_cost", "created_at", "booked_count"}
	mock.ExpectQuery("FROM class_slots s").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(10, 1, nil, "HIIT", now.Add(time.Hour), now.Add(2*time.Hour), 12, 1, now, 12).
			AddRow(11, 1, nil, "Yoga", now.Add(3*time.Hour), now.Add(4*time.Hour), 20, 2, now, 5))

	slots, err := repo.ListClassSlots(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	require.True(t, slots[0].IsFull)
	require.Equal(t, 0, slots[0].Available)
	require.False(t, slots[1].IsFull)
	require.Equal(t, 15, slots[1].Available)
}
