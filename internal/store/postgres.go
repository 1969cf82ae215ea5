package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"herbar/client/internal/catalog"
)

var ErrNotFound = errors.New("plant not found")

// PostgresStore serves the catalog from the plants and plant_details
// tables. It implements catalog.Fetcher.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) FetchAll(ctx context.Context) ([]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, scientific_name, category, tags::text, toxicity, difficulty, growth_rate, air_purification
		FROM plants
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	records := []catalog.Record{}
	for rows.Next() {
		var r catalog.Record
		var tags string
		if err := rows.Scan(&r.ID, &r.Name, &r.ScientificName, &r.Category, &tags, &r.Toxicity, &r.Difficulty, &r.GrowthRate, &r.AirPurification); err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		if r.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("plant %d tags: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	var d catalog.Detail
	var classification, pests, facts string
	err := s.db.QueryRowContext(ctx, `
		SELECT care_guide, seasonal_care, classification::text, pests::text, quick_facts::text
		FROM plant_details
		WHERE plant_id = $1
	`, id).Scan(&d.CareGuide, &d.SeasonalCare, &classification, &pests, &facts)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Detail{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return catalog.Detail{}, fmt.Errorf("read plant detail %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(classification), &d.Classification); err != nil {
		return catalog.Detail{}, fmt.Errorf("plant %d classification: %w", id, err)
	}
	if d.Pests, err = decodeList(pests); err != nil {
		return catalog.Detail{}, fmt.Errorf("plant %d pests: %w", id, err)
	}
	if d.QuickFacts, err = decodeList(facts); err != nil {
		return catalog.Detail{}, fmt.Errorf("plant %d quick facts: %w", id, err)
	}
	return d, nil
}

// UpsertRecords writes records and, for those carrying detail fields, their
// detail rows in one transaction.
func (s *PostgresStore) UpsertRecords(ctx context.Context, records []catalog.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		tags, err := encodeJSON(r.Tags, "[]")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plants (id, name, scientific_name, category, tags, toxicity, difficulty, growth_rate, air_purification)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name, scientific_name=EXCLUDED.scientific_name, category=EXCLUDED.category,
				tags=EXCLUDED.tags, toxicity=EXCLUDED.toxicity, difficulty=EXCLUDED.difficulty,
				growth_rate=EXCLUDED.growth_rate, air_purification=EXCLUDED.air_purification, updated_at=NOW()
		`, r.ID, r.Name, r.ScientificName, r.Category, tags, r.Toxicity, r.Difficulty, r.GrowthRate, r.AirPurification); err != nil {
			return fmt.Errorf("upsert plant %d: %w", r.ID, err)
		}

		detail := detailOf(r)
		if detail.Empty() {
			continue
		}
		classification, err := encodeJSON(detail.Classification, "{}")
		if err != nil {
			return err
		}
		pests, err := encodeJSON(detail.Pests, "[]")
		if err != nil {
			return err
		}
		facts, err := encodeJSON(detail.QuickFacts, "[]")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plant_details (plant_id, care_guide, seasonal_care, classification, pests, quick_facts)
			VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb)
			ON CONFLICT (plant_id) DO UPDATE SET
				care_guide=EXCLUDED.care_guide, seasonal_care=EXCLUDED.seasonal_care,
				classification=EXCLUDED.classification, pests=EXCLUDED.pests,
				quick_facts=EXCLUDED.quick_facts, updated_at=NOW()
		`, r.ID, detail.CareGuide, detail.SeasonalCare, classification, pests, facts); err != nil {
			return fmt.Errorf("upsert plant detail %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func detailOf(r catalog.Record) catalog.Detail {
	return catalog.Detail{
		CareGuide:      r.CareGuide,
		SeasonalCare:   r.SeasonalCare,
		Classification: r.Classification,
		Pests:          r.Pests,
		QuickFacts:     r.QuickFacts,
	}
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}
