package neo4j

import (
	"context"
	"fmt"

	neo "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/internal/graph"
	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/retry"
)

// Store applies synthesized subgraphs to Neo4j and runs read queries.
type Store struct {
	driver         neo.DriverWithContext
	database       string
	retrier        *retry.Retrier
	locks          *patientLocks
	maxQueryLength int
}

func NewStore(ctx context.Context, cfg *config.Neo4jConfig, retrier *retry.Retrier, maxQueryLength int) (*Store, error) {
	driver, err := neo.NewDriverWithContext(cfg.URI, neo.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	return &Store{
		driver:         driver,
		database:       cfg.Database,
		retrier:        retrier,
		locks:          newPatientLocks(),
		maxQueryLength: maxQueryLength,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping reports reachability for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// ReplacePatientSubgraph deletes everything previously written for the
// patient and writes the new subgraph, all inside one managed write
// transaction: a reader sees the old graph or the new one, never a mix.
// Calls for the same patient are serialized; different patients run
// concurrently. Returns nodes and edges written.
func (s *Store) ReplacePatientSubgraph(ctx context.Context, sub *graph.Subgraph) (int, int, error) {
	release := s.locks.acquire(sub.PatientID)
	defer release()

	logger := log.FromCtx(ctx)

	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		session := s.driver.NewSession(ctx, neo.SessionConfig{
			AccessMode:   neo.AccessModeWrite,
			DatabaseName: s.database,
		})
		defer session.Close(ctx)

		_, err := session.ExecuteWrite(ctx, func(tx neo.ManagedTransaction) (any, error) {
			return nil, s.writeSubgraph(ctx, tx, sub)
		})
		if err != nil && classify(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to replace subgraph for patient %d: %w", sub.PatientID, err)
	}

	logger.Info().
		Int64("patient_id", sub.PatientID).
		Int("nodes", len(sub.Nodes)).
		Int("edges", len(sub.Edges)).
		Msg("replaced patient subgraph")
	return len(sub.Nodes), len(sub.Edges), nil
}

func (s *Store) writeSubgraph(ctx context.Context, tx neo.ManagedTransaction, sub *graph.Subgraph) error {
	// Clear the patient's previous subgraph first; the enclosing transaction
	// makes clear-then-write atomic.
	if _, err := tx.Run(ctx,
		`MATCH (n {patient_id: $patientId}) DETACH DELETE n`,
		map[string]any{"patientId": sub.PatientID}); err != nil {
		return err
	}

	// Labels cannot be parameterized, so insert one batch per node type.
	nodesByType := make(map[graph.NodeType][]map[string]any)
	for _, n := range sub.Nodes {
		props := map[string]any{"id": n.ID, "patient_id": sub.PatientID}
		for k, v := range n.Properties {
			props[k] = v
		}
		nodesByType[n.Type] = append(nodesByType[n.Type], props)
	}
	for nodeType, batch := range nodesByType {
		query := fmt.Sprintf(`UNWIND $nodes AS node CREATE (n:%s) SET n = node`, nodeType)
		if _, err := tx.Run(ctx, query, map[string]any{"nodes": batch}); err != nil {
			return err
		}
	}

	edgesByType := make(map[graph.EdgeType][]map[string]any)
	for _, e := range sub.Edges {
		props := map[string]any{}
		for k, v := range e.Properties {
			props[k] = v
		}
		edgesByType[e.Type] = append(edgesByType[e.Type], map[string]any{
			"from":  e.FromID,
			"to":    e.ToID,
			"props": props,
		})
	}
	for edgeType, batch := range edgesByType {
		query := fmt.Sprintf(
			`UNWIND $edges AS edge
			 MATCH (a {id: edge.from, patient_id: $patientId})
			 MATCH (b {id: edge.to, patient_id: $patientId})
			 CREATE (a)-[r:%s]->(b) SET r = edge.props`, edgeType)
		if _, err := tx.Run(ctx, query, map[string]any{
			"edges":     batch,
			"patientId": sub.PatientID,
		}); err != nil {
			return err
		}
	}

	return nil
}

// Query runs a caller-supplied read query and returns rows as maps. The
// query is not patient-scoped here; constraining it is the caller's job.
func (s *Store) Query(ctx context.Context, query string) ([]map[string]any, error) {
	if len(query) > s.maxQueryLength {
		return nil, retry.Permanent(&QueryTooComplexError{Length: len(query), Limit: s.maxQueryLength})
	}

	var rows []map[string]any
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		session := s.driver.NewSession(ctx, neo.SessionConfig{
			AccessMode:   neo.AccessModeRead,
			DatabaseName: s.database,
		})
		defer session.Close(ctx)

		result, err := session.ExecuteRead(ctx, func(tx neo.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, err
			}

			var out []map[string]any
			for res.Next(ctx) {
				record := res.Record()
				row := make(map[string]any, len(record.Keys))
				for i, key := range record.Keys {
					row[key] = record.Values[i]
				}
				out = append(out, row)
			}
			return out, res.Err()
		})
		if err != nil {
			if isSyntaxError(err) {
				return retry.Permanent(&QuerySyntaxError{Msg: err.Error()})
			}
			if classify(err) {
				return retry.Permanent(err)
			}
			return err
		}

		rows = result.([]map[string]any)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("rows", len(rows)).Msg("graph query executed")
	return rows, nil
}
