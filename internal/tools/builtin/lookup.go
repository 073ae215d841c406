package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/medgraph/internal/ehr"
	"github.com/sandevgo/medgraph/internal/tools"
)

// Lookup answers direct relational questions about a patient without
// touching the graph.
type Lookup struct {
	extractor ehr.Extractor
}

func NewLookup(extractor ehr.Extractor) *Lookup {
	return &Lookup{extractor: extractor}
}

func (l *Lookup) Descriptors() []tools.Descriptor {
	one := 1.0
	return []tools.Descriptor{
		{
			Name:        "lookup_patient",
			Description: "Fetch a patient's demographics and a summary of their records from the medical database.",
			Schema: tools.ArgumentSchema{
				"patient_id": {Type: tools.TypeInt, Required: true, Minimum: &one,
					Description: "Numeric patient identifier"},
			},
			Handler: l.lookup,
		},
	}
}

func (l *Lookup) lookup(ctx context.Context, args tools.Arguments) (string, error) {
	patientID := args.Int("patient_id")

	snap, err := l.extractor.Snapshot(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("failed to look up patient %d: %w", patientID, err)
	}

	conditions := make([]string, 0, len(snap.Conditions))
	for _, c := range snap.Conditions {
		conditions = append(conditions, fmt.Sprintf("%s (%s)", c.Name, c.Code))
	}
	medications := make([]string, 0, len(snap.Medications))
	for _, m := range snap.Medications {
		medications = append(medications, fmt.Sprintf("%s %s", m.Name, m.Dosage))
	}

	out, errMarshal := json.Marshal(map[string]any{
		"patient_id":  snap.PatientID,
		"name":        snap.Name,
		"birth_date":  snap.BirthDate,
		"sex":         snap.Sex,
		"conditions":  conditions,
		"medications": medications,
		"encounters":  len(snap.Encounters),
		"symptoms":    len(snap.Symptoms),
		"lab_results": len(snap.Labs),
	})
	if errMarshal != nil {
		return "", errMarshal
	}
	return string(out), nil
}
