package ehr

import (
	"context"
	"errors"
)

var ErrPatientNotFound = errors.New("patient not found")

// PatientSnapshot is everything the relational store knows about one patient,
// read in a single pass. It lives only for the duration of one graph synthesis.
type PatientSnapshot struct {
	PatientID   int64
	Name        string
	BirthDate   string
	Sex         string
	Conditions  []ConditionFact
	Medications []MedicationFact
	Encounters  []EncounterFact
	Symptoms    []SymptomFact
	Labs        []LabFact
}

type ConditionFact struct {
	Code        string // natural key, e.g. ICD-10
	Name        string
	DiagnosedAt string
	Status      string
}

type MedicationFact struct {
	Code      string // natural key, e.g. ATC
	Name      string
	Dosage    string
	StartedAt string
}

type EncounterFact struct {
	EncounterID string // natural key
	Kind        string
	OccurredAt  string
	Provider    string
}

type SymptomFact struct {
	Code       string // natural key
	Name       string
	Severity   string
	ReportedAt string
}

type LabFact struct {
	TestCode    string // natural key together with CollectedAt
	TestName    string
	Value       float64
	Unit        string
	CollectedAt string
}

// Extractor reads one patient's rows across all tables.
type Extractor interface {
	Snapshot(ctx context.Context, patientID int64) (*PatientSnapshot, error)
}
