package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// SelectionKey identifies one memoized computation over a table snapshot.
type SelectionKey Hash

func (k SelectionKey) String() string { return Hash(k).String() }

// ComputeSelectionKey hashes (table version, category, metric set, extras).
// The metric set is order-insensitive; extras are kept in the given order.
func ComputeSelectionKey(version TableVersion, category string, metrics []string, extras ...string) SelectionKey {
	sorted := make([]string, len(metrics))
	copy(sorted, metrics)
	sort.Strings(sorted)

	var data strings.Builder
	data.WriteString(version.String())
	data.WriteByte(0)
	data.WriteString(category)
	data.WriteByte(0)
	for _, m := range sorted {
		data.WriteString(m)
		data.WriteByte(0x1f)
	}
	for _, e := range extras {
		data.WriteByte(0)
		data.WriteString(e)
	}

	return SelectionKey(NewHash([]byte(data.String())))
}
