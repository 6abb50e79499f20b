// Package backup takes scheduled snapshots of the file datastore. The
// datastore is one document written atomically, so copying the file at
// any moment yields a consistent snapshot.
package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// snapshotPrefix and snapshotSuffix frame snapshot file names; the
// timestamp in between sorts lexically in creation order.
const (
	snapshotPrefix = "roadcall-"
	snapshotSuffix = ".json"
	timeLayout     = "20060102-150405"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Opts configures the snapshot scheduler.
type Opts struct {
	// Source is the datastore file to snapshot.
	Source string
	// Dir receives the snapshots; created if missing.
	Dir string
	// Schedule is a 5-field cron expression.
	Schedule string
	// Keep is how many snapshots to retain. Zero keeps everything.
	Keep int
}

// Run takes a snapshot on every scheduled fire until ctx is cancelled.
// Individual snapshot failures are logged and the schedule keeps going.
func Run(ctx context.Context, opts Opts) error {
	sched, err := cronParser.Parse(opts.Schedule)
	if err != nil {
		return fmt.Errorf("backup: parse schedule %q: %w", opts.Schedule, err)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("backup: create %s: %w", opts.Dir, err)
	}

	for {
		timer := time.NewTimer(time.Until(sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		name, err := Snapshot(opts.Source, opts.Dir)
		if err != nil {
			log.Printf("backup: snapshot failed: %v", err)
			continue
		}
		log.Printf("backup: wrote %s", name)

		if opts.Keep > 0 {
			if err := Prune(opts.Dir, opts.Keep); err != nil {
				log.Printf("backup: prune failed: %v", err)
			}
		}
	}
}

// Snapshot copies the datastore file into dir and returns the snapshot
// path.
func Snapshot(source, dir string) (string, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("backup: read %s: %w", source, err)
	}
	name := snapshotPrefix + time.Now().Format(timeLayout) + snapshotSuffix
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: write %s: %w", dest, err)
	}
	return dest, nil
}

// Prune removes the oldest snapshots in dir beyond keep.
func Prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("backup: read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasPrefix(n, snapshotPrefix) && strings.HasSuffix(n, snapshotSuffix) {
			names = append(names, n)
		}
	}
	if len(names) <= keep {
		return nil
	}

	// Timestamped names sort oldest-first.
	sort.Strings(names)
	for _, n := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			return fmt.Errorf("backup: remove %s: %w", n, err)
		}
	}
	return nil
}
