package graph

import (
	"errors"
	"testing"

	"github.com/sandevgo/medgraph/internal/ehr"
)

func sampleSnapshot() *ehr.PatientSnapshot {
	return &ehr.PatientSnapshot{
		PatientID: 42,
		Name:      "Jane Doe",
		BirthDate: "1961-04-12",
		Sex:       "F",
		Conditions: []ehr.ConditionFact{
			{Code: "E11", Name: "Type 2 diabetes", DiagnosedAt: "2019-06-01", Status: "active"},
		},
		Medications: []ehr.MedicationFact{
			{Code: "A10BA02", Name: "Metformin", Dosage: "500mg", StartedAt: "2019-06-10"},
		},
	}
}

func TestSynthesize_NodeAndEdgeCounts(t *testing.T) {
	sg, err := Synthesize(sampleSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sg.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(sg.Nodes))
	}
	if len(sg.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(sg.Edges))
	}

	types := make(map[NodeType]int)
	for _, n := range sg.Nodes {
		types[n.Type]++
	}
	for _, want := range []NodeType{NodePatient, NodeCondition, NodeMedication} {
		if types[want] != 1 {
			t.Errorf("expected one %s node, got %d", want, types[want])
		}
	}

	edgeTypes := make(map[EdgeType]int)
	for _, e := range sg.Edges {
		edgeTypes[e.Type]++
	}
	if edgeTypes[EdgeHasCondition] != 1 || edgeTypes[EdgeTakesMedication] != 1 {
		t.Errorf("unexpected edge set: %v", edgeTypes)
	}
}

func TestSynthesize_Idempotent(t *testing.T) {
	first, err := Synthesize(sampleSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Synthesize(sampleSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Nodes) != len(second.Nodes) || len(first.Edges) != len(second.Edges) {
		t.Fatal("re-synthesis changed graph shape")
	}
	for i := range first.Nodes {
		if first.Nodes[i].ID != second.Nodes[i].ID {
			t.Errorf("node %d: id %s != %s", i, first.Nodes[i].ID, second.Nodes[i].ID)
		}
	}
	for i := range first.Edges {
		if first.Edges[i].FromID != second.Edges[i].FromID || first.Edges[i].ToID != second.Edges[i].ToID {
			t.Errorf("edge %d differs between runs", i)
		}
	}
}

func TestSynthesize_DistinctPatientsDistinctIDs(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()
	b.PatientID = 43

	sgA, _ := Synthesize(a)
	sgB, _ := Synthesize(b)

	idsA := make(map[string]bool)
	for _, n := range sgA.Nodes {
		idsA[n.ID] = true
	}
	for _, n := range sgB.Nodes {
		if idsA[n.ID] {
			t.Errorf("node id %s shared across patients", n.ID)
		}
	}
}

func TestSynthesize_DuplicateFactsDeduped(t *testing.T) {
	snap := sampleSnapshot()
	snap.Conditions = append(snap.Conditions, snap.Conditions[0])

	sg, err := Synthesize(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sg.Nodes) != 3 {
		t.Errorf("expected duplicate condition to collapse, got %d nodes", len(sg.Nodes))
	}
	if len(sg.Edges) != 2 {
		t.Errorf("expected duplicate edge to collapse, got %d edges", len(sg.Edges))
	}
}

func TestSynthesize_MissingNaturalKey(t *testing.T) {
	snap := sampleSnapshot()
	snap.Medications[0].Code = ""

	_, err := Synthesize(snap)
	var mfe *MalformedFactError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MalformedFactError, got %v", err)
	}
	if mfe.FactType != "medication" {
		t.Errorf("expected medication fact flagged, got %s", mfe.FactType)
	}
}

func TestSynthesize_SymptomIndication(t *testing.T) {
	snap := sampleSnapshot()
	snap.Symptoms = []ehr.SymptomFact{
		{Code: "R35", Name: "Polyuria", Severity: "mild", ReportedAt: "2019-05-20"},
		{Code: "R99", Name: "Unmapped", Severity: "mild", ReportedAt: "2019-05-20"},
	}

	sg, err := Synthesize(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	indications := 0
	for _, e := range sg.Edges {
		if e.Type == EdgeMayIndicate {
			indications++
		}
	}
	// R35 maps to E11 which the patient has; R99 has no mapping and that is
	// not an error, just no edge.
	if indications != 1 {
		t.Errorf("expected exactly 1 MAY_INDICATE edge, got %d", indications)
	}
}

func TestSynthesize_IndicationRequiresRecordedCondition(t *testing.T) {
	snap := sampleSnapshot()
	snap.Conditions = nil
	snap.Symptoms = []ehr.SymptomFact{
		{Code: "R35", Name: "Polyuria", Severity: "mild", ReportedAt: "2019-05-20"},
	}

	sg, err := Synthesize(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range sg.Edges {
		if e.Type == EdgeMayIndicate {
			t.Error("MAY_INDICATE edge produced for condition not on record")
		}
	}
}

func TestSynthesize_NoDanglingEdges(t *testing.T) {
	snap := sampleSnapshot()
	snap.Encounters = []ehr.EncounterFact{
		{EncounterID: "enc-1", Kind: "outpatient", OccurredAt: "2020-01-15", Provider: "Dr. Wu"},
	}
	snap.Labs = []ehr.LabFact{
		{TestCode: "HBA1C", TestName: "Hemoglobin A1c", Value: 7.2, Unit: "%", CollectedAt: "2020-01-15"},
	}

	sg, err := Synthesize(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make(map[string]bool)
	for _, n := range sg.Nodes {
		ids[n.ID] = true
	}
	for _, e := range sg.Edges {
		if !ids[e.FromID] || !ids[e.ToID] {
			t.Errorf("dangling edge %s: %s -> %s", e.Type, e.FromID, e.ToID)
		}
	}
}
