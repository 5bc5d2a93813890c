package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WaterLogDir is the directory spec §4.H step 7 writes per-counter
// and per-faucet water logs into.
type WaterLogDir struct {
	Dir string
	// RollingDepth bounds the per-counter short rolling log (default
	// 30), a feature preserved from original_source/icomputer.py's
	// bounded-ring short log that spec.md's distillation compressed
	// out; see SPEC_FULL.md.
	RollingDepth int

	rolling map[string][]string
}

func (w *WaterLogDir) ensureDir() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("logsink: creating water dir %s: %w", w.Dir, err)
	}
	return nil
}

func tripleLine(now time.Time, count, flow float64) string {
	return fmt.Sprintf("%s\t%.3f\t%.3f\n", now.Format(time.ANSIC), count, flow)
}

// AppendCounter appends "asctime \t count \t flow" to
// water/water-log-<node>-<counter>.txt and rewrites the bounded
// rolling log for that counter, per spec §4.H step 7.
// water/current_water_<node>.txt is written separately by WriteCurrent.
func (w *WaterLogDir) AppendCounter(now time.Time, node, counter string, count, flow float64) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	line := tripleLine(now, count, flow)
	path := filepath.Join(w.Dir, fmt.Sprintf("water-log-%s-%s.txt", node, counter))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logsink: opening water log %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("logsink: writing water log %s: %w", path, err)
	}

	if w.rolling == nil {
		w.rolling = make(map[string][]string)
	}
	depth := w.RollingDepth
	if depth <= 0 {
		depth = 30
	}
	buf := append(w.rolling[counter], line)
	if len(buf) > depth {
		buf = buf[len(buf)-depth:]
	}
	w.rolling[counter] = buf
	rollPath := filepath.Join(w.Dir, fmt.Sprintf("water-log-%s-%s-short.txt", node, counter))
	content := ""
	for _, l := range buf {
		content += l
	}
	if err := os.WriteFile(rollPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("logsink: writing rolling water log %s: %w", rollPath, err)
	}
	return nil
}

// AppendFaucet appends the same triple to
// water/water-log-faucet-<faucet>-<node>.txt, used only while the
// faucet was alone on its counter (spec §4.H step 7, second bullet).
func (w *WaterLogDir) AppendFaucet(now time.Time, node, faucet string, count, flow float64) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("water-log-faucet-%s-%s.txt", faucet, node))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logsink: opening faucet water log %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(tripleLine(now, count, flow)); err != nil {
		return fmt.Errorf("logsink: writing faucet water log %s: %w", path, err)
	}
	return nil
}

// WriteCurrent overwrites water/current_water_<node>.txt with every
// local counter's latest count/flow, one line per counter.
func (w *WaterLogDir) WriteCurrent(now time.Time, node string, counters map[string]struct{ Count, Flow float64 }) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("current_water_%s.txt", node))
	content := ""
	for name, cf := range counters {
		content += fmt.Sprintf("%s\t%.3f\t%.3f\n", name, cf.Count, cf.Flow)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("logsink: writing current water file %s: %w", path, err)
	}
	return nil
}

// SummaryFaucet appends one open/close-session line to
// water/summary_faucet_<faucet>.txt: "open_time_iso \t duration_min
// \t alone_all_time \t median_flow \t total_water", per spec §4.J.
func (w *WaterLogDir) SummaryFaucet(faucet string, openTime time.Time, durationMin float64, aloneAllTime bool, medianFlow, totalWater float64) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("summary_faucet_%s.txt", faucet))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logsink: opening faucet summary %s: %w", path, err)
	}
	defer f.Close()
	line := fmt.Sprintf("%s\t%.3f\t%t\t%.3f\t%.3f\n", openTime.Format(time.RFC3339), durationMin, aloneAllTime, medianFlow, totalWater)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("logsink: writing faucet summary %s: %w", path, err)
	}
	return nil
}
