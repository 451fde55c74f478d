package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// HashQuery derives the content hash identifying a cache entry. The query is
// lowercased with whitespace collapsed, then joined with the configuration ID
// and optional collection name before hashing, so identical inputs always map
// to the same key.
func HashQuery(query, configID, collection string) string {
	normalized := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(query)), " ")

	input := normalized + "|" + configID
	if collection != "" {
		input += "|" + collection
	}

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
