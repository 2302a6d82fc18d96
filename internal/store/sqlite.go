package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/coverscan/coverscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS plans (
	id                     TEXT PRIMARY KEY,
	plan_name              TEXT NOT NULL,
	provider               TEXT NOT NULL,
	source                 TEXT NOT NULL,
	sum_assured_min        REAL NOT NULL DEFAULT 0,
	sum_assured_max        REAL NOT NULL DEFAULT 0,
	premium_annual         REAL NOT NULL DEFAULT 0,
	policy_term_min        INTEGER NOT NULL DEFAULT 5,
	policy_term_max        INTEGER NOT NULL DEFAULT 40,
	age_min                INTEGER NOT NULL DEFAULT 18,
	age_max                INTEGER NOT NULL DEFAULT 65,
	claim_settlement_ratio REAL NOT NULL DEFAULT 0,
	key_features           TEXT NOT NULL DEFAULT '',
	source_url             TEXT NOT NULL DEFAULT '',
	last_retrieved_at      DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_plans_identity ON plans(plan_name, provider);
CREATE INDEX IF NOT EXISTS idx_plans_source ON plans(source);
CREATE INDEX IF NOT EXISTS idx_plans_csr ON plans(claim_settlement_ratio);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertPlans(ctx context.Context, plans []model.Plan) (*UpsertResult, error) {
	if len(plans) == 0 {
		return &UpsertResult{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer func() { _ = tx.Rollback() }()

	result := &UpsertResult{}
	now := time.Now().UTC()

	for _, p := range plans {
		var existingID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM plans WHERE plan_name = ? AND provider = ?`,
			p.PlanName, p.Provider,
		).Scan(&existingID)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO plans (
					id, plan_name, provider, source,
					sum_assured_min, sum_assured_max, premium_annual,
					policy_term_min, policy_term_max, age_min, age_max,
					claim_settlement_ratio, key_features, source_url, last_retrieved_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), p.PlanName, p.Provider, p.Source,
				p.SumAssuredMin, p.SumAssuredMax, p.PremiumAnnual,
				p.PolicyTermMin, p.PolicyTermMax, p.AgeMin, p.AgeMax,
				p.ClaimSettlementRatio, joinFeatures(p.KeyFeatures), p.SourceURL, now,
			)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: insert plan %s", p.Key())
			}
			result.Inserted++
		case err != nil:
			return nil, eris.Wrapf(err, "sqlite: lookup plan %s", p.Key())
		default:
			// Whole-record overwrite, last writer wins. A later, less
			// complete source run can blank out a previously good field;
			// the source column records which adapter wrote last.
			_, err = tx.ExecContext(ctx,
				`UPDATE plans SET
					source = ?,
					sum_assured_min = ?, sum_assured_max = ?, premium_annual = ?,
					policy_term_min = ?, policy_term_max = ?, age_min = ?, age_max = ?,
					claim_settlement_ratio = ?, key_features = ?, source_url = ?,
					last_retrieved_at = ?
				WHERE id = ?`,
				p.Source,
				p.SumAssuredMin, p.SumAssuredMax, p.PremiumAnnual,
				p.PolicyTermMin, p.PolicyTermMax, p.AgeMin, p.AgeMax,
				p.ClaimSettlementRatio, joinFeatures(p.KeyFeatures), p.SourceURL,
				now, existingID,
			)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: update plan %s", p.Key())
			}
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit upsert")
	}
	return result, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, key model.PlanKey) (*model.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		selectPlanColumns+` FROM plans WHERE plan_name = ? AND provider = ?`,
		key.PlanName, key.Provider,
	)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get plan %s", key)
	}
	return p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.Plan, error) {
	query := selectPlanColumns + ` FROM plans WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if filter.MinCSR > 0 {
		query += ` AND claim_settlement_ratio >= ?`
		args = append(args, filter.MinCSR)
	}
	query += ` ORDER BY claim_settlement_ratio DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan")
		}
		plans = append(plans, *p)
	}
	return plans, eris.Wrap(rows.Err(), "sqlite: list plans iterate")
}

func (s *SQLiteStore) CountPlans(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count plans")
}

func (s *SQLiteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM plans ORDER BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: sources")
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source")
		}
		sources = append(sources, src)
	}
	return sources, eris.Wrap(rows.Err(), "sqlite: sources iterate")
}

// helpers

const selectPlanColumns = `SELECT id, plan_name, provider, source,
	sum_assured_min, sum_assured_max, premium_annual,
	policy_term_min, policy_term_max, age_min, age_max,
	claim_settlement_ratio, key_features, source_url, last_retrieved_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanPlan(row scannable) (*model.Plan, error) {
	var p model.Plan
	var features string

	err := row.Scan(
		&p.ID, &p.PlanName, &p.Provider, &p.Source,
		&p.SumAssuredMin, &p.SumAssuredMax, &p.PremiumAnnual,
		&p.PolicyTermMin, &p.PolicyTermMax, &p.AgeMin, &p.AgeMax,
		&p.ClaimSettlementRatio, &features, &p.SourceURL, &p.LastRetrievedAt,
	)
	if err != nil {
		return nil, err
	}
	p.KeyFeatures = splitFeatures(features)
	return &p, nil
}

// Features are stored pipe-separated, matching the upstream comparison sites'
// own delimiting.
func joinFeatures(features []string) string {
	return strings.Join(features, "|")
}

func splitFeatures(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
