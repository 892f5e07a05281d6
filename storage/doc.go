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


// Package storage provides the storage abstraction layer for weave.
//
// This package defines store interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB,
// in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// The combined constructors (badger.NewStores, badger.NewMemoryStores) return
// the storage.VectorIndex and storage.GraphStore interfaces so that consumers
// stay decoupled from BadgerDB specifics. The per-store constructors
// (badger.NewVectorIndex, badger.NewGraphStore) return concrete types wired
// to a shared *badger.Backend, for callers that manage the backend lifecycle
// themselves.
//
// # Architecture
//
// The storage layer is split along the two retrieval paths:
//
//   - VectorIndex: embedding storage and nearest-neighbor search, with a
//     bijective mapping between vector IDs and document IDs
//   - GraphStore: chunk nodes, entity nodes, typed weighted edges, and
//     bounded traversal over them
//
// # Usage
//
// Create the stores:
//
//	vectors, graph, backend, err := badger.NewStores("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	defer graph.Close()
//	defer vectors.Close()
//
// Use in tests with in-memory storage:
//
//	vectors, graph, backend, err := badger.NewMemoryStores()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
