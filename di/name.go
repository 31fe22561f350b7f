package di

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// maxTypeNameLen is a conservative bound below the smallest symbol-name
// limit of the supported kernel versions.
const maxTypeNameLen = 128

// hashHexLen is the width of the hash suffix appended to truncated names.
const hashHexLen = 16

// SanitizeTypeName maps an arbitrary type name to the alphabet the
// kernel's type format accepts. Characters outside [0-9A-Za-z_] become
// "_<hex codepoint>_". Results longer than 128 bytes are truncated and
// suffixed with a 64-bit hash of the full sanitized name, so distinct
// long names stay distinct. The transform is idempotent.
func SanitizeTypeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '_',
			r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%X_", r)
		}
	}

	s := b.String()
	if len(s) <= maxTypeNameLen {
		return s
	}

	// The hash covers the full sanitized name, so the suffix depends
	// only on the input, never on what the truncation kept.
	h := fnv.New64a()
	h.Write([]byte(s))
	return fmt.Sprintf("%s_%016x", s[:maxTypeNameLen-hashHexLen-1], h.Sum64())
}
