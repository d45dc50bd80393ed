package cache

import "hash/fnv"

// Key fingerprints a SQL string with FNV-1a.
func Key(query string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(query))
	return h.Sum64()
}
