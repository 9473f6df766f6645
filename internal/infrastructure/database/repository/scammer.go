package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"hiveguard/internal/domain/models"
	"hiveguard/internal/infrastructure/database"
)

const scammerColumns = `
	id, name, phone_number, scam_type, risk_level, report_count,
	success_rate, last_seen, known_patterns, description`

// ScammerRepository reads the scammer registry from the scammers table:
//
//	id TEXT PRIMARY KEY, name TEXT NOT NULL, phone_number TEXT, scam_type TEXT,
//	risk_level TEXT, report_count INT, success_rate DOUBLE PRECISION,
//	last_seen TIMESTAMPTZ, known_patterns TEXT[] NOT NULL DEFAULT '{}',
//	description TEXT, created_at TIMESTAMPTZ NOT NULL DEFAULT now()
type ScammerRepository struct {
	db database.Querier
}

// NewScammerRepository creates a new scammer repository
func NewScammerRepository(db database.Querier) *ScammerRepository {
	return &ScammerRepository{db: db}
}

// Name identifies the repository as a registry source
func (r *ScammerRepository) Name() string {
	return "postgres:scammers"
}

// LoadScammers returns every row in insertion order. Validation happens in
// the reference data loader, same as for file sources.
func (r *ScammerRepository) LoadScammers(ctx context.Context) ([]models.ScammerRecord, error) {
	query := `SELECT` + scammerColumns + `
		FROM scammers
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scammers: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanScammer)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scammers: %w", err)
	}
	return records, nil
}

// GetByID retrieves a single scammer
func (r *ScammerRepository) GetByID(ctx context.Context, id string) (*models.ScammerRecord, error) {
	query := `SELECT` + scammerColumns + `
		FROM scammers
		WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query scammer: %w", err)
	}

	rec, err := pgx.CollectOneRow(rows, scanScammer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan scammer: %w", err)
	}
	return &rec, nil
}

func scanScammer(row pgx.CollectableRow) (models.ScammerRecord, error) {
	var (
		rec         models.ScammerRecord
		phone       pgtype.Text
		scamType    pgtype.Text
		riskLevel   pgtype.Text
		reportCount pgtype.Int4
		successRate pgtype.Float8
		lastSeen    pgtype.Timestamptz
		description pgtype.Text
	)

	err := row.Scan(
		&rec.ID, &rec.Name, &phone, &scamType, &riskLevel, &reportCount,
		&successRate, &lastSeen, &rec.KnownPatterns, &description,
	)
	if err != nil {
		return rec, err
	}

	rec.PhoneNumber = nullTextToString(phone)
	rec.ScamType = nullTextToString(scamType)
	rec.RiskLevel = models.RiskLevel(nullTextToString(riskLevel))
	rec.ReportCount = int4ToInt(reportCount)
	rec.SuccessRate = float8ToFloat(successRate)
	rec.LastSeen = timestamptzToTime(lastSeen)
	rec.Description = nullTextToString(description)

	return rec, nil
}
