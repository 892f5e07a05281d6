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


package core

import "errors"

// Error taxonomy. Specific errors wrap one of the four category sentinels so
// callers can classify failures with errors.Is.
var (
	// ErrValidation indicates malformed or incomplete caller input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a node, edge, or vector id is absent. It is a
	// result value, not an exceptional condition.
	ErrNotFound = errors.New("not found")

	// ErrDependency indicates an external collaborator (embedder, vector
	// index, graph store, entity extractor) failed or is unavailable.
	ErrDependency = errors.New("dependency failure")

	// ErrConfig indicates an invalid configuration value, such as a chunk
	// overlap that is not smaller than the chunk size.
	ErrConfig = errors.New("invalid configuration")
)

// Domain validation errors
var (
	// ErrEmptyText indicates the document or chunk text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrEmptyEntityType indicates the entity Type field is empty.
	ErrEmptyEntityType = errors.New("entity type cannot be empty")

	// ErrEmptyEdgeEndpoint indicates an edge source or target ID is empty.
	ErrEmptyEdgeEndpoint = errors.New("edge endpoints cannot be empty")

	// ErrInvalidEdgeType indicates an edge type that is not identifier-safe.
	ErrInvalidEdgeType = errors.New("edge type must be identifier-safe")
)
