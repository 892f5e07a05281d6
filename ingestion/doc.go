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


// Package ingestion turns raw documents into graph-linked, vector-indexed
// chunks.
//
// The TextProcessor cleans markup and encoding artifacts out of the input
// and slices it into overlapping word windows. The Pipeline then processes
// each window in order: it embeds the text, registers it in the vector
// index, creates a chunk node in the graph, links the node to semantically
// similar chunks with weighted RELATED_TO edges, and links it to extracted
// named entities with MENTIONS edges.
//
// Ingestion is best-effort rather than transactional. A failure aborts the
// chunk being processed but never rolls back chunks already committed, and
// entity extraction failures only cost the affected chunk its entity links.
package ingestion
