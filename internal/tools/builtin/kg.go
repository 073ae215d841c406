package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/medgraph/internal/ehr"
	"github.com/sandevgo/medgraph/internal/graph"
	"github.com/sandevgo/medgraph/internal/tools"
)

// GraphStore is the slice of the store adapter the tools need.
type GraphStore interface {
	ReplacePatientSubgraph(ctx context.Context, sub *graph.Subgraph) (int, int, error)
	Query(ctx context.Context, query string) ([]map[string]any, error)
}

// KnowledgeGraph exposes graph build and query as agent tools.
type KnowledgeGraph struct {
	extractor ehr.Extractor
	store     GraphStore
}

func NewKnowledgeGraph(extractor ehr.Extractor, store GraphStore) *KnowledgeGraph {
	return &KnowledgeGraph{
		extractor: extractor,
		store:     store,
	}
}

func (k *KnowledgeGraph) Descriptors() []tools.Descriptor {
	one := 1.0
	return []tools.Descriptor{
		{
			Name: "build_knowledge_graph",
			Description: "Rebuild the knowledge graph for one patient from their medical records. " +
				"Replaces any previously built graph for that patient.",
			Schema: tools.ArgumentSchema{
				"patient_id": {Type: tools.TypeInt, Required: true, Minimum: &one,
					Description: "Numeric patient identifier"},
			},
			Handler: k.build,
		},
		{
			Name: "query_knowledge_graph",
			Description: "Run a read-only Cypher query against the knowledge graph and return matching rows. " +
				"Always constrain the query to one patient, e.g. MATCH (p:Patient {patient_id: 42}).",
			Schema: tools.ArgumentSchema{
				"query": {Type: tools.TypeString, Required: true,
					Description: "Cypher query to execute"},
			},
			Handler: k.query,
		},
	}
}

func (k *KnowledgeGraph) build(ctx context.Context, args tools.Arguments) (string, error) {
	patientID := args.Int("patient_id")

	snap, err := k.extractor.Snapshot(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("failed to extract records for patient %d: %w", patientID, err)
	}

	sub, err := graph.Synthesize(snap)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize graph: %w", err)
	}

	nodes, edges, err := k.store.ReplacePatientSubgraph(ctx, sub)
	if err != nil {
		return "", err
	}

	out, _ := json.Marshal(map[string]int{
		"nodes_written": nodes,
		"edges_written": edges,
	})
	return string(out), nil
}

func (k *KnowledgeGraph) query(ctx context.Context, args tools.Arguments) (string, error) {
	rows, err := k.store.Query(ctx, args.String("query"))
	if err != nil {
		return "", err
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	out, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode query rows: %w", err)
	}
	return string(out), nil
}
