package logsink

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// StatusFile rewrites actions/<node>_status.txt with the current
// desired-open set, one faucet name per line, only when that set
// changed since the previous write (spec §4.H step 3 / §4.J).
type StatusFile struct {
	Path string

	last string
}

// WriteIfChanged writes desiredOpen (sorted for a stable diff/byte
// comparison) if it differs from the last write this process has
// made. Returns whether it actually wrote.
func (s *StatusFile) WriteIfChanged(desiredOpen map[string]bool) (bool, error) {
	names := make([]string, 0, len(desiredOpen))
	for n := range desiredOpen {
		names = append(names, n)
	}
	sort.Strings(names)
	content := strings.Join(names, "\n")
	if len(names) > 0 {
		content += "\n"
	}
	if content == s.last {
		return false, nil
	}
	if err := os.WriteFile(s.Path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("logsink: writing status file %s: %w", s.Path, err)
	}
	s.last = content
	return true, nil
}
