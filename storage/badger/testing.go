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


package badger

import "github.com/poiesic/weave/storage"

// NewStores creates the vector index and graph store on a database at path.
// Returns vectors, graph, backend, and error.
// Caller must close both stores and the backend when done.
func NewStores(path string) (storage.VectorIndex, storage.GraphStore, *Backend, error) {
	return newStores(path, false)
}

// NewMemoryStores creates an in-memory vector index and graph store for testing.
// Returns vectors, graph, backend, and error.
// Caller must close both stores and the backend when done.
func NewMemoryStores() (storage.VectorIndex, storage.GraphStore, *Backend, error) {
	return newStores("", true)
}

func newStores(path string, inMemory bool) (storage.VectorIndex, storage.GraphStore, *Backend, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, nil, nil, err
	}

	vectors, err := NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	graph, err := NewGraphStore(backend)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return vectors, graph, backend, nil
}
