package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/medgraph/pkg/log"
)

// Seed loads a small synthetic patient dataset for local runs. It is
// idempotent: patients already present are left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	logger := log.FromCtx(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed tx: %w", err)
	}
	defer tx.Rollback()

	type patient struct {
		id        int64
		name      string
		birthDate string
		sex       string
	}
	patients := []patient{
		{42, "Jane Doe", "1961-04-12", "F"},
		{43, "Robert Miles", "1974-09-30", "M"},
	}

	inserted := make(map[int64]bool)
	for _, p := range patients {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM patients WHERE id = ?`, p.id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check patient %d: %w", p.id, err)
		}
		if exists > 0 {
			logger.Debug().Int64("patient_id", p.id).Msg("seed: patient already present")
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patients (id, name, birth_date, sex) VALUES (?, ?, ?, ?)`,
			p.id, p.name, p.birthDate, p.sex); err != nil {
			return fmt.Errorf("failed to insert patient %d: %w", p.id, err)
		}
		inserted[p.id] = true
	}

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO conditions (patient_id, code, name, diagnosed_at, status) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "E11", "Type 2 diabetes mellitus", "2019-06-01", "active"}},
		{`INSERT INTO conditions (patient_id, code, name, diagnosed_at, status) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "I10", "Essential hypertension", "2017-02-14", "active"}},
		{`INSERT INTO medications (patient_id, code, name, dosage, started_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "A10BA02", "Metformin", "500mg twice daily", "2019-06-10"}},
		{`INSERT INTO medications (patient_id, code, name, dosage, started_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "C09AA05", "Ramipril", "5mg daily", "2017-03-01"}},
		{`INSERT INTO symptoms (patient_id, code, name, severity, reported_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "R35", "Polyuria", "moderate", "2019-05-20"}},
		{`INSERT INTO symptoms (patient_id, code, name, severity, reported_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "R53", "Fatigue", "mild", "2019-05-20"}},
		{`INSERT INTO encounters (patient_id, encounter_id, kind, occurred_at, provider) VALUES (?, ?, ?, ?, ?)`,
			[]any{42, "enc-2019-0601", "outpatient", "2019-06-01", "Dr. Wu"}},
		{`INSERT INTO lab_results (patient_id, test_code, test_name, value, unit, collected_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{42, "HBA1C", "Hemoglobin A1c", 7.2, "%", "2019-06-01"}},
		{`INSERT INTO lab_results (patient_id, test_code, test_name, value, unit, collected_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{42, "GLU", "Fasting glucose", 8.1, "mmol/L", "2019-06-01"}},

		{`INSERT INTO conditions (patient_id, code, name, diagnosed_at, status) VALUES (?, ?, ?, ?, ?)`,
			[]any{43, "J45", "Asthma", "2005-11-03", "active"}},
		{`INSERT INTO medications (patient_id, code, name, dosage, started_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{43, "R03AC02", "Salbutamol", "100mcg as needed", "2005-11-10"}},
		{`INSERT INTO symptoms (patient_id, code, name, severity, reported_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{43, "R05", "Cough", "mild", "2024-01-08"}},
		{`INSERT INTO encounters (patient_id, encounter_id, kind, occurred_at, provider) VALUES (?, ?, ?, ?, ?)`,
			[]any{43, "enc-2024-0108", "outpatient", "2024-01-08", "Dr. Patel"}},
	}

	// Child rows only for patients inserted in this run
	var seeded int
	for _, s := range stmts {
		patientID := int64(s.args[0].(int))
		if !inserted[patientID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("failed to seed row: %w", err)
		}
		seeded++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logger.Info().Int("rows", seeded).Msg("seeded demo EHR data")
	return nil
}
