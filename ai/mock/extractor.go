package mock

import (
	"context"
	"strings"
	"unicode"

	"github.com/poiesic/weave/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default capitalized-token extraction.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.ExtractedEntity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: runs of capitalized words become PERSON entities and
// four-digit tokens become DATE entities. Crude, but deterministic and
// enough to exercise the mention-linking path in tests.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	words := strings.Fields(text)
	entities := make([]ai.ExtractedEntity, 0, 4)
	seen := make(map[string]bool)

	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		name := strings.Join(run, " ")
		run = nil
		if !seen[name] {
			seen[name] = true
			entities = append(entities, ai.ExtractedEntity{Name: name, Type: "PERSON"})
		}
	}

	for i, word := range words {
		cleaned := strings.Trim(word, ".,!?;:\"'()[]{}")
		if cleaned == "" {
			flush()
			continue
		}

		// Sentence-initial words are not treated as entities.
		if i > 0 && unicode.IsUpper([]rune(cleaned)[0]) {
			run = append(run, cleaned)
			continue
		}
		flush()

		if len(cleaned) == 4 && isDigits(cleaned) && !seen[cleaned] {
			seen[cleaned] = true
			entities = append(entities, ai.ExtractedEntity{Name: cleaned, Type: "DATE"})
		}
	}
	flush()

	return entities, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
