package bitcode

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/bpf-linker/errors"
)

// Version identifies the toolkit release that produced a bitcode buffer.
type Version struct {
	Major uint64
	Minor uint64
}

// ScanVersion extracts the toolkit version from the buffer's producer
// identification string. The string carries a language-runtime version
// token followed by the toolkit version, e.g.
//
//	rustc version 1.84.0 (9fc6b4312 2025-01-07) LLVM (19.1.5)
//	LLVM 20.1.0git
//
// Only the toolkit token is parsed; everything before it is ignored.
func ScanVersion(buf []byte) (Version, error) {
	ident, err := IdentificationString(buf)
	if err != nil {
		return Version{}, err
	}
	v, ok := parseToolkitVersion(ident)
	if !ok {
		return Version{}, errors.InvalidVersion(ident)
	}
	return v, nil
}

// parseToolkitVersion finds the version token after the last "LLVM"
// marker and parses it as semver, tolerating shortened and suffixed
// forms ("20", "19.1", "20.1.0git").
func parseToolkitVersion(ident string) (Version, bool) {
	idx := strings.LastIndex(ident, "LLVM")
	if idx < 0 {
		return Version{}, false
	}
	rest := strings.TrimLeft(ident[idx+len("LLVM"):], " (")

	end := 0
	for end < len(rest) && (isDigit(rest[end]) || rest[end] == '.') {
		end++
	}
	token := strings.TrimRight(rest[:end], ".")
	if token == "" {
		return Version{}, false
	}
	switch strings.Count(token, ".") {
	case 0:
		token += ".0.0"
	case 1:
		token += ".0"
	}

	v, err := semver.StrictNewVersion(token)
	if err != nil {
		return Version{}, false
	}
	return Version{Major: v.Major(), Minor: v.Minor()}, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
