// Package callid derives a stable per-call identifier from a notification
// line. Rule order is a deliberate priority: more specific identifier kinds
// are checked before generic "id:" patterns, since the chosen identifier
// determines which notifications count as the same call.
package callid

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// FallbackPrefix tags identifiers derived by hashing the whole line.
const FallbackPrefix = "line-"

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules are tried in order; the first capture wins.
var rules = []rule{
	{"labeled-uuid", regexp.MustCompile(`(?i)(?:call|session|conversation)[-_ ]?(?:id|uuid)["':=\s]+(` + uuidPattern + `)`)},
	{"bare-uuid", regexp.MustCompile(`\b(` + uuidPattern + `)\b`)},
	{"call-id", regexp.MustCompile(`(?i)call[-_ ]?id["':=\s]+"?([A-Za-z0-9._-]+)"?`)},
	{"session-id", regexp.MustCompile(`(?i)session[-_ ]?id["':=\s]+"?([A-Za-z0-9._-]+)"?`)},
	{"generic-id", regexp.MustCompile(`(?i)\bid["':=\s]+"?([A-Za-z0-9._-]+)"?`)},
}

// Extract returns the call identifier for a qualifying line. When no rule
// matches, the identifier is FallbackPrefix plus the first 16 hex chars of
// the line's SHA-256, so byte-identical lines collapse to the same value.
func Extract(line string) string {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	sum := sha256.Sum256([]byte(line))
	return FallbackPrefix + hex.EncodeToString(sum[:])[:16]
}
