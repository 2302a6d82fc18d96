package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscan/coverscan/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetPlan_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, plan_name, provider, source`).
		WithArgs("Unknown Plan", "Unknown Provider").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetPlan(context.Background(), model.PlanKey{PlanName: "Unknown Plan", Provider: "Unknown Provider"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountPlans(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM plans`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountPlans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlans_InsertsNew(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM plans WHERE plan_name = \$1 AND provider = \$2`).
		WithArgs("Tech Term Plan", "LIC").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO plans`).
		WithArgs(pgxmock.AnyArg(), "Tech Term Plan", "LIC", "seed",
			50.0, 10000.0, 8500.0, 10, 40, 18, 65, 98.6,
			"Pure term plan|Online purchase", "https://example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	p := model.Plan{
		PlanName: "Tech Term Plan", Provider: "LIC", Source: "seed",
		SumAssuredMin: 50, SumAssuredMax: 10000, PremiumAnnual: 8500,
		PolicyTermMin: 10, PolicyTermMax: 40, AgeMin: 18, AgeMax: 65,
		ClaimSettlementRatio: 98.6,
		KeyFeatures:          []string{"Pure term plan", "Online purchase"},
		SourceURL:            "https://example.com",
	}
	res, err := s.UpsertPlans(context.Background(), []model.Plan{p})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 0, res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlans_UpdatesExisting(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM plans WHERE plan_name = \$1 AND provider = \$2`).
		WithArgs("Tech Term Plan", "LIC").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectExec(`UPDATE plans SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	p := model.Plan{
		PlanName: "Tech Term Plan", Provider: "LIC", Source: "bankbazaar",
		SumAssuredMin: 50, SumAssuredMax: 10000, PremiumAnnual: 8500,
		PolicyTermMin: 10, PolicyTermMax: 40, AgeMin: 18, AgeMax: 65,
		ClaimSettlementRatio: 98.6,
	}
	res, err := s.UpsertPlans(context.Background(), []model.Plan{p})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
