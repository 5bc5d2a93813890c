// Package logsink implements the append-only and overwrite log
// outputs spec §4.J describes: the action log, per-counter/per-faucet
// water logs, a bounded rolling short log, the status file, the
// keep-alive touch file, and daily report accumulation/dispatch.
// Grounded on original_source/icomputer/icomputer.py's
// write_action_log/write_status_file/write_keep_alive_file/
// write_water_log_counter.
package logsink

import (
	"fmt"
	"os"
	"time"
)

// ActionLog appends human-readable action lines to
// actions/<node>_actions.txt. Spec §4.J requires this exact format
// (timestamp prefix, then free text) because the external admin
// surface parses it back — keep it stable.
type ActionLog struct {
	Path string
}

// Append writes one line: "YYYY-MM-DD HH:MM:SS <msg>\n".
func (a *ActionLog) Append(now time.Time, msg string) error {
	f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logsink: opening action log %s: %w", a.Path, err)
	}
	defer f.Close()
	line := fmt.Sprintf("%s %s\n", now.Format("2006-01-02 15:04:05"), msg)
	_, err = f.WriteString(line)
	if err != nil {
		return fmt.Errorf("logsink: writing action log %s: %w", a.Path, err)
	}
	return nil
}
