package plan

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

func setupPlanMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func planColumns() []string {
	return []string{"id", "gym_id", "name", "description", "price_cents", "currency", "plan_type", "billing_interval",
		"included_classes", "external_product_ref", "external_price_ref", "active", "created_at", "updated_at"}
}

func TestCreate_Defaults(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	now := time.Now()
	classes := int64(10)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs(1, "Lite", "", int64(10000), "usd", "recurring", "monthly", &classes).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow(3, 1, "Lite", "", 10000, "usd", "recurring", "monthly", 10, "", "", true, now, now))

	p, err := repo.Create(context.Background(), 1, CreatePlanRequest{
		Name:            "Lite",
		PriceCents:      10000,
		PlanType:        "recurring",
		IncludedClasses: &classes,
	})
	require.NoError(t, err)
	require.Equal(t, BillingInterval("monthly"), p.BillingInterval)
	require.Equal(t, "usd", p.Currency)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM plans WHERE id = $1")).
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

// Смена цены очищает external_price_ref, одно и то же значение цены — нет.
func TestUpdate_PriceChangeClearsPriceRef(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("external_price_ref = CASE WHEN price_cents <> $5 THEN '' ELSE external_price_ref END")).
		WithArgs("Lite", "", nil, nil, int64(12000), 3).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow(3, 1, "Lite", "", 12000, "usd", "recurring", "monthly", nil, "prod_1", "", true, now, now))

	p, err := repo.Update(context.Background(), 3, UpdatePlanRequest{Name: "Lite", PriceCents: 12000})
	require.NoError(t, err)
	require.Equal(t, int64(12000), p.PriceCents)
	require.Empty(t, p.ExternalPriceRef)
	require.Equal(t, "prod_1", p.ExternalProductRef)
}

func TestSetExternalRefs(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET external_product_ref = $1, external_price_ref = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs("prod_1", "price_1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetExternalRefs(context.Background(), 3, "prod_1", "price_1")
	require.NoError(t, err)
}

func TestSetExternalRefs_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET external_product_ref")).
		WithArgs("prod_1", "price_1", 404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetExternalRefs(context.Background(), 404, "prod_1", "price_1")
	require.ErrorIs(t, err, ErrPlanNotFound)
}
