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


// Package search provides vector, graph, and hybrid retrieval over the
// chunk graph.
//
// The Engine type exposes three entry points:
//   - VectorSearch: pure embedding similarity, hydrated from the graph
//   - GraphSearch: bounded-depth traversal with relationship filtering
//   - HybridSearch: fuses vector candidates with entity-graph expansion
//     using normalized, weighted scoring
//
// Hybrid results carry a GraphInfo record explaining how each score was
// assembled, which makes ranking decisions inspectable from the outside.
package search
