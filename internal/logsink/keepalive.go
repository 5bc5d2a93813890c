package logsink

import (
	"fmt"
	"os"
	"time"
)

// KeepAlive overwrites actions/<node>_keep_alive.txt with the current
// time, touched every 60 ticks (spec §4.H step 7) so an external
// watchdog can tell the process is alive.
type KeepAlive struct {
	Path string
}

func (k *KeepAlive) Touch(now time.Time) error {
	if err := os.WriteFile(k.Path, []byte(now.Format(time.ANSIC)), 0o644); err != nil {
		return fmt.Errorf("logsink: writing keep-alive %s: %w", k.Path, err)
	}
	return nil
}
