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

import (
	"fmt"
	"regexp"
)

// edgeTypePattern is the allow-list for relationship type names. Edge types
// end up embedded in store keys and traversal filters, so they must never
// carry separator or control characters.
var edgeTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateDocumentInput validates a document submitted for ingestion.
//
// Validation rules:
//   - Text must not be empty
//
// NOT validated:
//   - Title and Metadata (both optional)
func ValidateDocumentInput(doc *DocumentInput) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyText)
	}
	return nil
}

// ValidateEdgeType validates that a relationship type name is identifier-safe.
func ValidateEdgeType(edgeType string) error {
	if edgeType == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidEdgeType)
	}
	if !edgeTypePattern.MatchString(edgeType) {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidEdgeType, edgeType)
	}
	return nil
}

// ValidateEdgeInput validates a caller-supplied edge creation request.
//
// Validation rules:
//   - SourceID and TargetID must not be empty
//   - Type must be identifier-safe
//
// NOT validated:
//   - Endpoint existence (checked by the mutation service against the store)
//   - Weight (any float is a legal weight)
func ValidateEdgeInput(edge *EdgeInput) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrValidation)
	}
	if edge.SourceID == "" || edge.TargetID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyEdgeEndpoint)
	}
	return ValidateEdgeType(edge.Type)
}

// ValidateEntity validates an Entity according to domain rules.
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrValidation)
	}
	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyEntityName)
	}
	if entity.Type == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyEntityType)
	}
	return nil
}
