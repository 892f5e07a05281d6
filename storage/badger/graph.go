package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

// GraphStore implements storage.GraphStore for BadgerDB.
//
// Edges are written under two keys, a forward key indexed by source and a
// reverse key indexed by target, both holding the full serialized edge.
// This makes incident-edge scans a pair of prefix iterations with no key
// parsing.
type GraphStore struct {
	backend *Backend
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a new GraphStore on the given backend.
func NewGraphStore(backend *Backend) (*GraphStore, error) {
	return &GraphStore{
		backend: backend,
	}, nil
}

// Close releases resources. GraphStore has no resources to release.
func (s *GraphStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (s *GraphStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// UpsertChunkNode inserts or replaces a chunk node. The store owns the
// record timestamps: the stored copy gets a fresh UpdatedAt, InsertedAt is
// preserved from any existing record, and the caller's chunk is never
// modified.
func (s *GraphStore) UpsertChunkNode(ctx context.Context, chunk *core.Chunk) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeChunkKey(chunk.Id)

		old, err := readChunk(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		record := *chunk
		record.InsertedAt = now
		if old != nil {
			record.InsertedAt = old.InsertedAt
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalChunk(&record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetChunkNode retrieves a chunk node by ID.
func (s *GraphStore) GetChunkNode(ctx context.Context, id string) (*core.Chunk, error) {
	var result *core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ChunkIDs returns the IDs of all chunk nodes in the graph.
func (s *GraphStore) ChunkIDs(ctx context.Context) ([]string, error) {
	var ids []string
	prefix := []byte(chunkRecordPrefix + ":")
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	}, false)
	return ids, err
}

// GetOrCreateEntity finds or creates an entity node by (name, type) tuple.
// Entity IDs are derived from the tuple, so a lookup by computed ID is
// equivalent to a tuple-index lookup and races converge on the same record.
func (s *GraphStore) GetOrCreateEntity(ctx context.Context, name, entityType string) (*core.Entity, error) {
	id := core.EntityID(name, entityType)

	var result *core.Entity
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntityKey(id)

		existing, err := readEntity(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		now := time.Now().UTC()
		entity := &core.Entity{
			Id:         id,
			Name:       name,
			Type:       entityType,
			InsertedAt: now,
			UpdatedAt:  now,
		}
		if err := core.ValidateEntity(entity); err != nil {
			return err
		}

		if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
			return err
		}
		// Case-insensitive name index
		if err := tx.Set(makeEntityNameKey(name, id), []byte(id)); err != nil {
			return err
		}
		result = entity
		return tx.Commit()
	}, true)

	if err == badger.ErrConflict {
		// Lost a race with a concurrent creator; the record now exists.
		return s.getEntity(ctx, id)
	}
	return result, err
}

// getEntity retrieves an entity node by ID.
func (s *GraphStore) getEntity(ctx context.Context, id string) (*core.Entity, error) {
	var result *core.Entity
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindEntitiesByName returns all entity nodes matching a name case-insensitively.
func (s *GraphStore) FindEntitiesByName(ctx context.Context, name string) ([]*core.Entity, error) {
	var results []*core.Entity
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEntityNameKey(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			entity, err := readEntity(tx, makeEntityKey(id))
			if err != nil {
				return err
			}
			if entity != nil {
				results = append(results, entity)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetNode retrieves a node of either kind by ID.
func (s *GraphStore) GetNode(ctx context.Context, id string) (*core.Node, error) {
	var result *core.Node
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readNode(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteNode removes a node and cascades to all its incident edges.
func (s *GraphStore) DeleteNode(ctx context.Context, id string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		node, err := readNode(tx, id)
		if err != nil {
			return err
		}
		if node == nil {
			return storage.ErrNotFound
		}

		// Cascade: outgoing edges and their reverse keys
		out, err := scanEdges(tx, makePartialEdgeOutKey(id))
		if err != nil {
			return err
		}
		for _, edge := range out {
			if err := tx.Delete(makeEdgeOutKey(edge.SourceID, edge.TargetID, edge.Type)); err != nil {
				return err
			}
			if err := tx.Delete(makeEdgeInKey(edge.SourceID, edge.TargetID, edge.Type)); err != nil {
				return err
			}
		}

		// Cascade: incoming edges and their forward keys
		in, err := scanEdges(tx, makePartialEdgeInKey(id))
		if err != nil {
			return err
		}
		for _, edge := range in {
			if err := tx.Delete(makeEdgeOutKey(edge.SourceID, edge.TargetID, edge.Type)); err != nil {
				return err
			}
			if err := tx.Delete(makeEdgeInKey(edge.SourceID, edge.TargetID, edge.Type)); err != nil {
				return err
			}
		}

		// Delete the node record and its indices
		switch node.Kind {
		case core.NodeKindChunk:
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
		case core.NodeKindEntity:
			if err := tx.Delete(makeEntityNameKey(node.Entity.Name, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeEntityKey(id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// UpsertEdge inserts or updates the edge keyed by (SourceID, TargetID, Type).
func (s *GraphStore) UpsertEdge(ctx context.Context, input *core.EdgeInput) error {
	if err := core.ValidateEdgeType(input.Type); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		outKey := makeEdgeOutKey(input.SourceID, input.TargetID, input.Type)

		old, err := readEdge(tx, outKey)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		edge := &core.Edge{
			SourceID:   input.SourceID,
			TargetID:   input.TargetID,
			Type:       input.Type,
			Weight:     input.Weight,
			Metadata:   input.Metadata,
			InsertedAt: now,
			UpdatedAt:  now,
		}
		if old != nil {
			edge.InsertedAt = old.InsertedAt
		}

		value := storage.MarshalEdge(edge)
		if err := tx.Set(outKey, value); err != nil {
			return err
		}
		if err := tx.Set(makeEdgeInKey(edge.SourceID, edge.TargetID, edge.Type), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEdge retrieves an edge by its (source, target, type) key.
func (s *GraphStore) GetEdge(ctx context.Context, sourceID, targetID, edgeType string) (*core.Edge, error) {
	var result *core.Edge
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEdge(tx, makeEdgeOutKey(sourceID, targetID, edgeType))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteEdge removes an edge by its (source, target, type) key.
func (s *GraphStore) DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		outKey := makeEdgeOutKey(sourceID, targetID, edgeType)

		edge, err := readEdge(tx, outKey)
		if err != nil {
			return err
		}
		if edge == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(outKey); err != nil {
			return err
		}
		if err := tx.Delete(makeEdgeInKey(sourceID, targetID, edgeType)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IncidentEdges returns all edges touching a node, outgoing and incoming.
func (s *GraphStore) IncidentEdges(ctx context.Context, id string) ([]*core.Edge, error) {
	var results []*core.Edge
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = incidentEdges(tx, id)
		return err
	}, false)
	return results, err
}

// IncidentWeight returns the sum of the weights of all edges touching a node.
func (s *GraphStore) IncidentWeight(ctx context.Context, id string) (float64, error) {
	edges, err := s.IncidentEdges(ctx, id)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, edge := range edges {
		sum += edge.Weight
	}
	return sum, nil
}

// Traverse walks the graph breadth-first from a start node up to depth hops.
func (s *GraphStore) Traverse(ctx context.Context, startID string, depth int, edgeTypes []string) (*core.Subgraph, error) {
	if depth < 0 {
		return nil, storage.ErrInvalidQuery
	}

	var allowed map[string]bool
	if len(edgeTypes) > 0 {
		allowed = make(map[string]bool, len(edgeTypes))
		for _, t := range edgeTypes {
			allowed[t] = true
		}
	}

	var sub *core.Subgraph
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		start, err := readNode(tx, startID)
		if err != nil {
			return err
		}
		if start == nil {
			return storage.ErrNotFound
		}

		// BFS over undirected adjacency. The visited set guarantees
		// termination on cyclic graphs.
		visited := map[string]*core.Node{startID: start}
		order := []string{startID}
		frontier := []string{startID}

		for hop := 0; hop < depth && len(frontier) > 0; hop++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var next []string
			for _, id := range frontier {
				edges, err := incidentEdges(tx, id)
				if err != nil {
					return err
				}
				for _, edge := range edges {
					if !edgeTypeAllowed(allowed, edge.Type) {
						continue
					}
					neighborID := edge.TargetID
					if neighborID == id {
						neighborID = edge.SourceID
					}
					if _, ok := visited[neighborID]; ok {
						continue
					}
					neighbor, err := readNode(tx, neighborID)
					if err != nil {
						return err
					}
					if neighbor == nil {
						// Dangling edge; skip the missing endpoint.
						continue
					}
					visited[neighborID] = neighbor
					order = append(order, neighborID)
					next = append(next, neighborID)
				}
			}
			frontier = next
		}

		// Induced edges: qualifying edges with both endpoints visited.
		seen := make(map[string]bool)
		var edges []*core.Edge
		for _, id := range order {
			out, err := scanEdges(tx, makePartialEdgeOutKey(id))
			if err != nil {
				return err
			}
			for _, edge := range out {
				if !edgeTypeAllowed(allowed, edge.Type) {
					continue
				}
				if _, ok := visited[edge.TargetID]; !ok {
					continue
				}
				key := edge.SourceID + "\x00" + edge.Type + "\x00" + edge.TargetID
				if seen[key] {
					continue
				}
				seen[key] = true
				edges = append(edges, edge)
			}
		}

		nodes := make([]*core.Node, 0, len(order))
		for _, id := range order {
			nodes = append(nodes, visited[id])
		}
		sub = &core.Subgraph{Nodes: nodes, Edges: edges}
		return nil
	}, false)

	return sub, err
}

// Helper functions

func edgeTypeAllowed(allowed map[string]bool, edgeType string) bool {
	return allowed == nil || allowed[edgeType]
}

// incidentEdges collects a node's outgoing and incoming edges within a
// transaction. A self-loop appears under both scans and is reported once.
func incidentEdges(tx *badger.Txn, id string) ([]*core.Edge, error) {
	out, err := scanEdges(tx, makePartialEdgeOutKey(id))
	if err != nil {
		return nil, err
	}
	in, err := scanEdges(tx, makePartialEdgeInKey(id))
	if err != nil {
		return nil, err
	}

	results := out
	for _, edge := range in {
		if edge.SourceID == edge.TargetID {
			continue
		}
		results = append(results, edge)
	}
	return results, nil
}

// scanEdges reads all edges under a key prefix.
func scanEdges(tx *badger.Txn, prefix []byte) ([]*core.Edge, error) {
	var results []*core.Edge

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var edge *core.Edge
		err := iter.Item().Value(func(val []byte) error {
			var err error
			edge, err = storage.UnmarshalEdge(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		if edge != nil {
			results = append(results, edge)
		}
	}
	return results, nil
}

// readNode reads a node of either kind from the transaction.
// Returns nil without error if no chunk or entity has the ID.
func readNode(tx *badger.Txn, id string) (*core.Node, error) {
	chunk, err := readChunk(tx, makeChunkKey(id))
	if err != nil {
		return nil, err
	}
	if chunk != nil {
		return core.ChunkNode(chunk), nil
	}

	entity, err := readEntity(tx, makeEntityKey(id))
	if err != nil {
		return nil, err
	}
	if entity != nil {
		return core.EntityNode(entity), nil
	}
	return nil, nil
}

// readChunk reads a chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// readEntity reads an entity from the transaction.
func readEntity(tx *badger.Txn, key []byte) (*core.Entity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.Entity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}

// readEdge reads an edge from the transaction.
func readEdge(tx *badger.Txn, key []byte) (*core.Edge, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var edge *core.Edge
	err = item.Value(func(val []byte) error {
		var err error
		edge, err = storage.UnmarshalEdge(val)
		return err
	})
	return edge, err
}
