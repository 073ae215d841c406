package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/medgraph/internal/ehr"
	"github.com/sandevgo/medgraph/pkg/log"
)

// EHRRepo reads patient records for graph synthesis.
type EHRRepo struct {
	db *sql.DB
}

func NewEHRRepo(db *sql.DB) *EHRRepo {
	return &EHRRepo{db: db}
}

// Snapshot loads every row related to one patient across all EHR tables.
func (r *EHRRepo) Snapshot(ctx context.Context, patientID int64) (*ehr.PatientSnapshot, error) {
	snap := &ehr.PatientSnapshot{PatientID: patientID}

	row := r.db.QueryRowContext(ctx,
		`SELECT name, birth_date, sex FROM patients WHERE id = ?`, patientID)
	if err := row.Scan(&snap.Name, &snap.BirthDate, &snap.Sex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ehr.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to load patient %d: %w", patientID, err)
	}

	if err := r.loadConditions(ctx, patientID, snap); err != nil {
		return nil, err
	}
	if err := r.loadMedications(ctx, patientID, snap); err != nil {
		return nil, err
	}
	if err := r.loadEncounters(ctx, patientID, snap); err != nil {
		return nil, err
	}
	if err := r.loadSymptoms(ctx, patientID, snap); err != nil {
		return nil, err
	}
	if err := r.loadLabs(ctx, patientID, snap); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Int64("patient_id", patientID).
		Int("conditions", len(snap.Conditions)).
		Int("medications", len(snap.Medications)).
		Int("encounters", len(snap.Encounters)).
		Int("symptoms", len(snap.Symptoms)).
		Int("labs", len(snap.Labs)).
		Msg("loaded patient snapshot")
	return snap, nil
}

func (r *EHRRepo) loadConditions(ctx context.Context, patientID int64, snap *ehr.PatientSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, COALESCE(diagnosed_at, ''), COALESCE(status, '') FROM conditions WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return fmt.Errorf("failed to query conditions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f ehr.ConditionFact
		if err := rows.Scan(&f.Code, &f.Name, &f.DiagnosedAt, &f.Status); err != nil {
			return fmt.Errorf("failed to scan condition: %w", err)
		}
		snap.Conditions = append(snap.Conditions, f)
	}
	return rows.Err()
}

func (r *EHRRepo) loadMedications(ctx context.Context, patientID int64, snap *ehr.PatientSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, COALESCE(dosage, ''), COALESCE(started_at, '') FROM medications WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f ehr.MedicationFact
		if err := rows.Scan(&f.Code, &f.Name, &f.Dosage, &f.StartedAt); err != nil {
			return fmt.Errorf("failed to scan medication: %w", err)
		}
		snap.Medications = append(snap.Medications, f)
	}
	return rows.Err()
}

func (r *EHRRepo) loadEncounters(ctx context.Context, patientID int64, snap *ehr.PatientSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT encounter_id, COALESCE(kind, ''), COALESCE(occurred_at, ''), COALESCE(provider, '') FROM encounters WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return fmt.Errorf("failed to query encounters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f ehr.EncounterFact
		if err := rows.Scan(&f.EncounterID, &f.Kind, &f.OccurredAt, &f.Provider); err != nil {
			return fmt.Errorf("failed to scan encounter: %w", err)
		}
		snap.Encounters = append(snap.Encounters, f)
	}
	return rows.Err()
}

func (r *EHRRepo) loadSymptoms(ctx context.Context, patientID int64, snap *ehr.PatientSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, COALESCE(severity, ''), COALESCE(reported_at, '') FROM symptoms WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return fmt.Errorf("failed to query symptoms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f ehr.SymptomFact
		if err := rows.Scan(&f.Code, &f.Name, &f.Severity, &f.ReportedAt); err != nil {
			return fmt.Errorf("failed to scan symptom: %w", err)
		}
		snap.Symptoms = append(snap.Symptoms, f)
	}
	return rows.Err()
}

func (r *EHRRepo) loadLabs(ctx context.Context, patientID int64, snap *ehr.PatientSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT test_code, test_name, COALESCE(value, 0), COALESCE(unit, ''), COALESCE(collected_at, '') FROM lab_results WHERE patient_id = ? ORDER BY id`, patientID)
	if err != nil {
		return fmt.Errorf("failed to query lab results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f ehr.LabFact
		if err := rows.Scan(&f.TestCode, &f.TestName, &f.Value, &f.Unit, &f.CollectedAt); err != nil {
			return fmt.Errorf("failed to scan lab result: %w", err)
		}
		snap.Labs = append(snap.Labs, f)
	}
	return rows.Err()
}
