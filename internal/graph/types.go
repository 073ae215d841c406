package graph

import "fmt"

type NodeType string

const (
	NodePatient    NodeType = "Patient"
	NodeCondition  NodeType = "Condition"
	NodeMedication NodeType = "Medication"
	NodeSymptom    NodeType = "Symptom"
	NodeEncounter  NodeType = "Encounter"
	NodeLabResult  NodeType = "LabResult"
)

type EdgeType string

const (
	EdgeHasCondition    EdgeType = "HAS_CONDITION"
	EdgeTakesMedication EdgeType = "TAKES_MEDICATION"
	EdgeHasSymptom      EdgeType = "HAS_SYMPTOM"
	EdgeHadEncounter    EdgeType = "HAD_ENCOUNTER"
	EdgeHasLabResult    EdgeType = "HAS_LAB_RESULT"
	EdgeMayIndicate     EdgeType = "MAY_INDICATE"
)

// Node properties hold scalars only; the store writer relies on that.
type Node struct {
	ID         string
	Type       NodeType
	Properties map[string]any
}

type Edge struct {
	FromID     string
	ToID       string
	Type       EdgeType
	Properties map[string]any
}

// Subgraph is the complete node/edge set for one patient from one synthesis
// pass. Node IDs are unique within it and every edge endpoint resolves.
type Subgraph struct {
	PatientID int64
	Nodes     []Node
	Edges     []Edge
}

// MalformedFactError reports a relational fact missing its natural key.
type MalformedFactError struct {
	FactType string
	Field    string
}

func (e *MalformedFactError) Error() string {
	return fmt.Sprintf("malformed %s fact: missing %s", e.FactType, e.Field)
}

// ConsistencyError reports a structural defect in a synthesized subgraph:
// a duplicate node ID or an edge referencing a node outside the batch.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "inconsistent subgraph: " + e.Reason
}
