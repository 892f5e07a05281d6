package ai

// EntityTypes defines the valid categories for extracted entities.
// Entities whose type is not in this list are discarded before any
// graph node or edge is created for them.
var EntityTypes = []string{
	"ORG",
	"PERSON",
	"GPE",
	"DATE",
	"LOC",
	"EVENT",
	"PRODUCT",
	"NORP",
}

// AllowedEntityType reports whether the given type label is in the
// EntityTypes allow-list. The comparison is exact; extractors are
// expected to emit upper-case labels.
func AllowedEntityType(entityType string) bool {
	for _, t := range EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}
