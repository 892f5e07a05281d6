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


package storage

import "errors"

var (
	// ErrNotFound is returned by point lookups when the node, edge, or
	// vector entry does not exist. Service layers translate it into the
	// user-facing not-found error.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write would violate a uniqueness
	// rule, like adding a second vector entry for the same document.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidQuery is returned for malformed query parameters, like a
	// non-positive topK or a negative traversal depth.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed wraps record decode failures.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData is returned when a stored value is shorter than
	// its fixed-width encoding requires.
	ErrTruncatedData = errors.New("truncated data")
)
