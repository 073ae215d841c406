package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/sandevgo/medgraph/internal/ehr"
)

// NodeID derives the stable identifier for a node. The same
// (patient, type, natural key) triple always hashes to the same ID, which is
// what makes re-synthesis idempotent.
func NodeID(patientID int64, nodeType NodeType, naturalKey string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", patientID, nodeType, naturalKey)))
	return hex.EncodeToString(sum[:])[:16]
}

// Synthesize maps a relational snapshot to a typed subgraph. It is pure: no
// I/O, and identical snapshots yield byte-identical node and edge sets.
func Synthesize(snap *ehr.PatientSnapshot) (*Subgraph, error) {
	b := &builder{
		patientID: snap.PatientID,
		seenNodes: make(map[string]bool),
		seenEdges: make(map[string]bool),
	}

	patientKey := strconv.FormatInt(snap.PatientID, 10)
	patientNode := b.addNode(NodePatient, patientKey, map[string]any{
		"patient_id": snap.PatientID,
		"name":       snap.Name,
		"birth_date": snap.BirthDate,
		"sex":        snap.Sex,
	})

	conditionIDs := make(map[string]string, len(snap.Conditions))
	for _, c := range snap.Conditions {
		if c.Code == "" {
			return nil, &MalformedFactError{FactType: "condition", Field: "code"}
		}
		id := b.addNode(NodeCondition, c.Code, map[string]any{
			"code":         c.Code,
			"name":         c.Name,
			"diagnosed_at": c.DiagnosedAt,
			"status":       c.Status,
		})
		conditionIDs[c.Code] = id
		b.addEdge(patientNode, id, EdgeHasCondition, nil)
	}

	for _, m := range snap.Medications {
		if m.Code == "" {
			return nil, &MalformedFactError{FactType: "medication", Field: "code"}
		}
		id := b.addNode(NodeMedication, m.Code, map[string]any{
			"code":       m.Code,
			"name":       m.Name,
			"dosage":     m.Dosage,
			"started_at": m.StartedAt,
		})
		b.addEdge(patientNode, id, EdgeTakesMedication, nil)
	}

	for _, e := range snap.Encounters {
		if e.EncounterID == "" {
			return nil, &MalformedFactError{FactType: "encounter", Field: "encounter_id"}
		}
		id := b.addNode(NodeEncounter, e.EncounterID, map[string]any{
			"encounter_id": e.EncounterID,
			"kind":         e.Kind,
			"occurred_at":  e.OccurredAt,
			"provider":     e.Provider,
		})
		b.addEdge(patientNode, id, EdgeHadEncounter, nil)
	}

	for _, s := range snap.Symptoms {
		if s.Code == "" {
			return nil, &MalformedFactError{FactType: "symptom", Field: "code"}
		}
		id := b.addNode(NodeSymptom, s.Code, map[string]any{
			"code":        s.Code,
			"name":        s.Name,
			"severity":    s.Severity,
			"reported_at": s.ReportedAt,
		})
		b.addEdge(patientNode, id, EdgeHasSymptom, nil)

		// Only link to conditions the patient actually has on record.
		for _, condCode := range IndicatedConditions(s.Code) {
			if condID, ok := conditionIDs[condCode]; ok {
				b.addEdge(id, condID, EdgeMayIndicate, nil)
			}
		}
	}

	for _, l := range snap.Labs {
		if l.TestCode == "" {
			return nil, &MalformedFactError{FactType: "lab", Field: "test_code"}
		}
		id := b.addNode(NodeLabResult, l.TestCode+"|"+l.CollectedAt, map[string]any{
			"test_code":    l.TestCode,
			"test_name":    l.TestName,
			"value":        l.Value,
			"unit":         l.Unit,
			"collected_at": l.CollectedAt,
		})
		b.addEdge(patientNode, id, EdgeHasLabResult, nil)
	}

	sg := &Subgraph{
		PatientID: snap.PatientID,
		Nodes:     b.nodes,
		Edges:     b.edges,
	}
	if err := validate(sg); err != nil {
		return nil, err
	}
	return sg, nil
}

type builder struct {
	patientID int64
	nodes     []Node
	edges     []Edge
	seenNodes map[string]bool
	seenEdges map[string]bool
}

// addNode dedupes on ID: the same fact appearing twice in a snapshot stays a
// single node.
func (b *builder) addNode(t NodeType, naturalKey string, props map[string]any) string {
	id := NodeID(b.patientID, t, naturalKey)
	if b.seenNodes[id] {
		return id
	}
	b.seenNodes[id] = true
	b.nodes = append(b.nodes, Node{ID: id, Type: t, Properties: props})
	return id
}

func (b *builder) addEdge(from, to string, t EdgeType, props map[string]any) {
	key := from + "|" + string(t) + "|" + to
	if b.seenEdges[key] {
		return
	}
	b.seenEdges[key] = true
	b.edges = append(b.edges, Edge{FromID: from, ToID: to, Type: t, Properties: props})
}

// validate enforces the batch invariants: unique node IDs and no dangling
// edge endpoints. A failure here means a synthesis bug, never store state.
func validate(sg *Subgraph) error {
	ids := make(map[string]bool, len(sg.Nodes))
	for _, n := range sg.Nodes {
		if ids[n.ID] {
			return &ConsistencyError{Reason: "duplicate node id " + n.ID}
		}
		ids[n.ID] = true
	}
	for _, e := range sg.Edges {
		if !ids[e.FromID] {
			return &ConsistencyError{Reason: fmt.Sprintf("edge %s references unknown source %s", e.Type, e.FromID)}
		}
		if !ids[e.ToID] {
			return &ConsistencyError{Reason: fmt.Sprintf("edge %s references unknown target %s", e.Type, e.ToID)}
		}
	}
	return nil
}
