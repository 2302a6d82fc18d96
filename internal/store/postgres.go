package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/coverscan/coverscan/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS plans (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	plan_name              TEXT NOT NULL,
	provider               TEXT NOT NULL,
	source                 TEXT NOT NULL,
	sum_assured_min        DOUBLE PRECISION NOT NULL DEFAULT 0,
	sum_assured_max        DOUBLE PRECISION NOT NULL DEFAULT 0,
	premium_annual         DOUBLE PRECISION NOT NULL DEFAULT 0,
	policy_term_min        INTEGER NOT NULL DEFAULT 5,
	policy_term_max        INTEGER NOT NULL DEFAULT 40,
	age_min                INTEGER NOT NULL DEFAULT 18,
	age_max                INTEGER NOT NULL DEFAULT 65,
	claim_settlement_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
	key_features           TEXT NOT NULL DEFAULT '',
	source_url             TEXT NOT NULL DEFAULT '',
	last_retrieved_at      TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_plans_identity ON plans(plan_name, provider);
CREATE INDEX IF NOT EXISTS idx_plans_source ON plans(source);
CREATE INDEX IF NOT EXISTS idx_plans_csr ON plans(claim_settlement_ratio);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertPlans(ctx context.Context, plans []model.Plan) (*UpsertResult, error) {
	if len(plans) == 0 {
		return &UpsertResult{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin upsert")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result := &UpsertResult{}
	now := time.Now().UTC()

	for _, p := range plans {
		var existingID string
		err := tx.QueryRow(ctx,
			`SELECT id FROM plans WHERE plan_name = $1 AND provider = $2`,
			p.PlanName, p.Provider,
		).Scan(&existingID)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			_, err = tx.Exec(ctx,
				`INSERT INTO plans (
					id, plan_name, provider, source,
					sum_assured_min, sum_assured_max, premium_annual,
					policy_term_min, policy_term_max, age_min, age_max,
					claim_settlement_ratio, key_features, source_url, last_retrieved_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
				uuid.New().String(), p.PlanName, p.Provider, p.Source,
				p.SumAssuredMin, p.SumAssuredMax, p.PremiumAnnual,
				p.PolicyTermMin, p.PolicyTermMax, p.AgeMin, p.AgeMax,
				p.ClaimSettlementRatio, joinFeatures(p.KeyFeatures), p.SourceURL, now,
			)
			if err != nil {
				return nil, eris.Wrapf(err, "postgres: insert plan %s", p.Key())
			}
			result.Inserted++
		case err != nil:
			return nil, eris.Wrapf(err, "postgres: lookup plan %s", p.Key())
		default:
			_, err = tx.Exec(ctx,
				`UPDATE plans SET
					source = $1,
					sum_assured_min = $2, sum_assured_max = $3, premium_annual = $4,
					policy_term_min = $5, policy_term_max = $6, age_min = $7, age_max = $8,
					claim_settlement_ratio = $9, key_features = $10, source_url = $11,
					last_retrieved_at = $12
				WHERE id = $13`,
				p.Source,
				p.SumAssuredMin, p.SumAssuredMax, p.PremiumAnnual,
				p.PolicyTermMin, p.PolicyTermMax, p.AgeMin, p.AgeMax,
				p.ClaimSettlementRatio, joinFeatures(p.KeyFeatures), p.SourceURL,
				now, existingID,
			)
			if err != nil {
				return nil, eris.Wrapf(err, "postgres: update plan %s", p.Key())
			}
			result.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit upsert")
	}
	return result, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, key model.PlanKey) (*model.Plan, error) {
	row := s.pool.QueryRow(ctx,
		selectPlanColumns+` FROM plans WHERE plan_name = $1 AND provider = $2`,
		key.PlanName, key.Provider,
	)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan %s", key)
	}
	return p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.Plan, error) {
	query := selectPlanColumns + ` FROM plans WHERE 1=1`
	var args []any

	if filter.Source != "" {
		args = append(args, filter.Source)
		query += ` AND source = $1`
	}
	if filter.MinCSR > 0 {
		args = append(args, filter.MinCSR)
		if len(args) == 1 {
			query += ` AND claim_settlement_ratio >= $1`
		} else {
			query += ` AND claim_settlement_ratio >= $2`
		}
	}
	query += ` ORDER BY claim_settlement_ratio DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan")
		}
		plans = append(plans, *p)
	}
	return plans, eris.Wrap(rows.Err(), "postgres: list plans iterate")
}

func (s *PostgresStore) CountPlans(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count plans")
}

func (s *PostgresStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT source FROM plans ORDER BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: sources")
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source")
		}
		sources = append(sources, src)
	}
	return sources, eris.Wrap(rows.Err(), "postgres: sources iterate")
}
