package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/bpf-linker/bitcode"
	"github.com/wippyai/bpf-linker/errors"
)

// defaultMajor is used when no input reveals a toolkit version.
const defaultMajor = 21

// versionedBinaries maps a toolkit major version to the linker binary
// built against it.
var versionedBinaries = map[uint64]string{
	19: "bpf-linker-19",
	20: "bpf-linker-20",
	21: "bpf-linker-21",
}

// detectMajor scans the inputs in order and returns the major version
// of the first one carrying a parseable producer string. Inputs that
// are not scannable bitcode are skipped; an unparseable version string
// and I/O failures are fatal.
func detectMajor(inputs []string, log *zap.Logger) (uint64, bool, error) {
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, false, fmt.Errorf("reading input %s: %w", path, err)
		}

		v, err := bitcode.ScanVersion(data)
		if err != nil {
			var le *errors.Error
			if stderrors.As(err, &le) && le.Kind != errors.KindInvalidVersion {
				log.Debug("input is not scannable bitcode, trying next",
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}
			return 0, false, fmt.Errorf("parsing toolkit version from %s: %w", path, err)
		}

		log.Debug("detected toolkit version",
			zap.String("path", path),
			zap.Uint64("major", v.Major),
			zap.Uint64("minor", v.Minor),
		)
		return v.Major, true, nil
	}
	return 0, false, nil
}

// binaryForMajor picks the versioned binary for a toolkit major.
func binaryForMajor(major uint64) (string, bool) {
	name, ok := versionedBinaries[major]
	return name, ok
}
