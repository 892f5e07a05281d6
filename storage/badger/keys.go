package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key prefixes for different data types.
//
// Node and edge keys embed node IDs separated by ':'. Chunk IDs are UUIDs
// and entity IDs are "ent-" hex strings, so IDs never contain the separator.
const (
	chunkRecordPrefix  = "chkrec"
	entityRecordPrefix = "entrec"
	entityNamePrefix   = "entname"
	edgeOutPrefix      = "edgout"
	edgeInPrefix       = "edgin"
	vectorRecordPrefix = "vecrec"
	vectorDocPrefix    = "vecdoc"
	vectorIDSeq        = "vecseq"
)

// makeChunkKey generates a key for a chunk node by ID.
func makeChunkKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkRecordPrefix, id))
}

// makeEntityKey generates a key for an entity node by ID.
func makeEntityKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", entityRecordPrefix, id))
}

// makeEntityNameKey generates a composite key for the case-insensitive name
// index. Entity names are arbitrary text and may contain the separator, so
// the lowered name is length-prefixed; without the length a name could alias
// the scan prefix of one of its own prefixes.
// Format: prefix:<uint32 BigEndian byte length><lower(name)>:id
func makeEntityNameKey(name, id string) []byte {
	return append(makePartialEntityNameKey(name), id...)
}

// makePartialEntityNameKey generates the scan prefix for exact name lookups.
func makePartialEntityNameKey(name string) []byte {
	lowered := strings.ToLower(name)
	buf := make([]byte, 0, len(entityNamePrefix)+len(lowered)+6)
	buf = append(buf, entityNamePrefix...)
	buf = append(buf, ':')
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(lowered)))
	buf = append(buf, lowered...)
	buf = append(buf, ':')
	return buf
}

// makeEdgeOutKey generates the forward key for an edge.
// Format: prefix:source:type:target
func makeEdgeOutKey(sourceID, targetID, edgeType string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", edgeOutPrefix, sourceID, edgeType, targetID))
}

// makeEdgeInKey generates the reverse key for an edge.
// Format: prefix:target:type:source
func makeEdgeInKey(sourceID, targetID, edgeType string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", edgeInPrefix, targetID, edgeType, sourceID))
}

// makePartialEdgeOutKey generates the scan prefix for a node's outgoing edges.
func makePartialEdgeOutKey(sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", edgeOutPrefix, sourceID))
}

// makePartialEdgeInKey generates the scan prefix for a node's incoming edges.
func makePartialEdgeInKey(targetID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", edgeInPrefix, targetID))
}

// makeVectorKey generates a key for a vector entry by vector ID.
// The ID is written in BigEndian order so lexicographic sort works correctly.
func makeVectorKey(vectorID int64) []byte {
	prefix := vectorRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(vectorID))
	return buf
}

// makeVectorDocKey generates the reverse-mapping key from document ID to vector ID.
func makeVectorDocKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorDocPrefix, docID))
}
