package events

import "strings"

// NormalizeAsset canonicalizes a market key before it is attached to an
// emitted event: surrounding whitespace is trimmed and the key is
// upper-cased. Lending market keys are opaque identifiers rather than
// denominated asset symbols, but the canonicalization keeps event payloads
// consistent regardless of how a caller cased the key argument.
func NormalizeAsset(asset string) string {
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed)
}
