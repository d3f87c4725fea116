package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key composes a cache key from its segments following the
// "<domain>:<subresource>:<organizationId>[:paramHash]" convention, so
// pattern invalidation can target one tenant's data for one feature area.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// ParamHash derives a short deterministic digest of query parameters for use
// as the trailing key segment. Keys are hashed in sorted order and nil
// values are skipped, so identical parameter sets always hash identically.
func ParamHash(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%v", k, params[k])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:4])
}
