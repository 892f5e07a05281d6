// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"maps"
	"sort"

	"github.com/poiesic/weave/core"
)

const (
	// vectorOversample widens the vector candidate set before fusion so
	// graph signals can reorder beyond the final topK.
	vectorOversample = 3

	// graphExpansionLimit bounds the number of chunks gathered through
	// entity expansion per query.
	graphExpansionLimit = 20
)

// HybridParams tunes the fusion of vector and graph signals.
type HybridParams struct {
	// VectorWeight scales the normalized vector similarity.
	VectorWeight float64

	// GraphWeight scales the graph component (connectivity plus
	// expansion bonus, discounted by hop count).
	GraphWeight float64

	// ExpandDepth is how many hops away from a query-matched entity
	// chunks are gathered from. Must be at least 1.
	ExpandDepth int
}

// DefaultHybridParams returns the standard fusion weights.
func DefaultHybridParams() HybridParams {
	return HybridParams{
		VectorWeight: 0.7,
		GraphWeight:  0.3,
		ExpandDepth:  1,
	}
}

// candidate is the pre-scoring view of a chunk in the fusion pool.
// Candidates are collected first and scored in a separate pass that never
// mutates them, so a chunk reached by both paths is re-derived, not patched.
type candidate struct {
	id              string
	text            string
	metadata        map[string]string
	vectorScore     float64
	hops            int
	expanded        bool
	expansionWeight float64
}

// HybridSearch merges vector-similarity candidates with entity-graph
// expansion candidates into a single ranked list.
// Returns up to topK results, ranked by fused score.
func (e *Engine) HybridSearch(ctx context.Context, query string, topK int, params HybridParams) ([]*core.SearchResult, error) {
	return e.HybridSearchWithMonitor(ctx, query, topK, params, nil)
}

// HybridSearchWithMonitor runs a hybrid search with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// The fusion works over a candidate pool built from two paths. Path A is a
// vector search over 3x topK, tagged with hop count 0. Path B matches query
// entities against graph entities by case-insensitive name and pulls in their
// nearby chunks, tagged with hop count 1. A chunk found by both paths keeps
// its vector score but its hop count stays at 1. Every candidate is then
// scored as
//
//	final = VectorWeight*v_norm + GraphWeight*(c_norm+bonus)/(1+hops)
//
// where v_norm and c_norm are the vector score and summed incident edge
// weight normalized by the pool maximum, and bonus is 1.0 for candidates
// reached through entity expansion. Ties keep insertion order, so vector
// hits sort before graph-only hits at equal score.
func (e *Engine) HybridSearchWithMonitor(ctx context.Context, query string, topK int, params HybridParams, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK < 1 {
		return []*core.SearchResult{}, nil
	}
	if params.ExpandDepth < 1 {
		params.ExpandDepth = 1
	}

	monitor.Start(query)

	// Path A: vector candidates
	vectorHits, err := e.VectorSearch(ctx, query, vectorOversample*topK)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(vectorHits)

	pool := make([]candidate, 0, len(vectorHits))
	index := make(map[string]int, len(vectorHits))
	for _, hit := range vectorHits {
		index[hit.Id] = len(pool)
		pool = append(pool, candidate{
			id:          hit.Id,
			text:        hit.Text,
			metadata:    hit.Metadata,
			vectorScore: hit.Score,
		})
	}

	// Path B: entity expansion candidates
	pool, err = e.expandQueryEntities(ctx, query, pool, index, params.ExpandDepth, monitor)
	if err != nil {
		return nil, err
	}

	if len(pool) == 0 {
		return []*core.SearchResult{}, nil
	}

	// Connectivity scoring, query-independent
	connectivity := make([]float64, len(pool))
	for i, cand := range pool {
		weight, err := e.graph.IncidentWeight(ctx, cand.id)
		if err != nil {
			return nil, err
		}
		connectivity[i] = weight
	}

	var maxVector, maxConnectivity float64
	for i, cand := range pool {
		if cand.vectorScore > maxVector {
			maxVector = cand.vectorScore
		}
		if connectivity[i] > maxConnectivity {
			maxConnectivity = connectivity[i]
		}
	}
	// An all-zero pool normalizes against 1 instead of dividing by zero
	if maxVector <= 0 {
		maxVector = 1
	}
	if maxConnectivity <= 0 {
		maxConnectivity = 1
	}

	results := make([]*core.SearchResult, 0, len(pool))
	for i, cand := range pool {
		vNorm := cand.vectorScore / maxVector
		cNorm := connectivity[i] / maxConnectivity

		bonus := 0.0
		if cand.expanded {
			bonus = 1.0
		}
		graphComponent := (cNorm + bonus) / float64(1+cand.hops)
		score := params.VectorWeight*vNorm + params.GraphWeight*graphComponent

		switch {
		case cand.expanded && cand.vectorScore > 0:
			monitor.HybridHit(cand.id)
		case cand.expanded:
			monitor.GraphHit(cand.id)
		default:
			monitor.VectorHit(cand.id)
		}

		results = append(results, &core.SearchResult{
			Id:       cand.id,
			Text:     cand.text,
			Score:    score,
			Metadata: cand.metadata,
			GraphInfo: &core.GraphInfo{
				VectorScoreNorm:       vNorm,
				ConnectivityScoreNorm: cNorm,
				Hops:                  cand.hops,
				ExpansionBonus:        bonus,
				ExpansionWeight:       cand.expansionWeight,
				Expanded:              cand.expanded,
			},
		})
	}

	// Stable sort keeps insertion order on ties: vector candidates were
	// inserted before graph-only candidates.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	monitor.Finish(results)

	return results, nil
}

// expandQueryEntities extracts entities from the query, matches them against
// graph entities by case-insensitive name, and folds their nearby chunks into
// the candidate pool. Chunks already in the pool keep their vector score but
// are re-tagged with hop count 1; the tag is never reverted to 0. An
// extractor failure degrades the search to the vector-only pool instead of
// failing it.
func (e *Engine) expandQueryEntities(ctx context.Context, query string, pool []candidate, index map[string]int, depth int, monitor SearchMonitor) ([]candidate, error) {
	extracted, err := e.extractor.ExtractEntities(ctx, query)
	if err != nil {
		e.logger.Warn("entity extraction failed, using vector candidates only", "err", err)
		monitor.AfterQueryEntityExtraction(nil)
		return pool, nil
	}

	names := make([]string, 0, len(extracted))
	for _, entity := range extracted {
		names = append(names, entity.Name)
	}
	monitor.AfterQueryEntityExtraction(names)

	budget := graphExpansionLimit
	expanded := make(map[string]bool)

	for _, name := range names {
		if budget <= 0 {
			break
		}

		matches, err := e.graph.FindEntitiesByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			e.logger.Debug("query entity not found in graph", "name", name)
			continue
		}

		ids := make([]string, 0, len(matches))
		for _, entity := range matches {
			ids = append(ids, entity.Id)
		}
		monitor.FoundEntityMatch(name, ids)

		for _, entity := range matches {
			if budget <= 0 {
				break
			}

			subgraph, err := e.graph.Traverse(ctx, entity.Id, depth, nil)
			if err != nil {
				return nil, err
			}

			// Direct edge weights, for chunks adjacent to the entity
			direct := make(map[string]float64)
			for _, edge := range subgraph.Edges {
				if edge.SourceID == entity.Id {
					direct[edge.TargetID] = edge.Weight
				} else if edge.TargetID == entity.Id {
					direct[edge.SourceID] = edge.Weight
				}
			}

			for _, node := range subgraph.Nodes {
				if budget <= 0 {
					break
				}
				if node.Kind != core.NodeKindChunk || expanded[node.Chunk.Id] {
					continue
				}
				expanded[node.Chunk.Id] = true
				budget--

				weight, ok := direct[node.Chunk.Id]
				if !ok {
					weight = core.DefaultEdgeWeight
				}

				if i, present := index[node.Chunk.Id]; present {
					prior := pool[i]
					pool[i] = candidate{
						id:              prior.id,
						text:            prior.text,
						metadata:        prior.metadata,
						vectorScore:     prior.vectorScore,
						hops:            1,
						expanded:        true,
						expansionWeight: weight,
					}
					continue
				}

				index[node.Chunk.Id] = len(pool)
				pool = append(pool, candidate{
					id:              node.Chunk.Id,
					text:            node.Chunk.Text,
					metadata:        node.Chunk.Metadata,
					hops:            1,
					expanded:        true,
					expansionWeight: weight,
				})
			}
		}
	}

	monitor.AfterGraphExpansion(maps.Keys(expanded))
	return pool, nil
}
