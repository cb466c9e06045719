package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"viralflow-api/pkg/dashboard"
)

const filePrefix = "run_"

// Writer persists run records to a directory, one JSON file per run.
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// Dir is the journal directory.
func (w *Writer) Dir() string { return w.dir }

// WriteRun writes rec to run_<utc timestamp>_<purpose>_<seq>.json.
func (w *Writer) WriteRun(rec dashboard.RunRecord) (string, error) {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = w.nowFn()
	}
	purpose := rec.Purpose
	if purpose == "" {
		purpose = "unknown"
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	name := fmt.Sprintf("%s%s_%s_%05d.json", filePrefix, rec.StartedAt.UTC().Format("20060102_150405"), purpose, seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("journal: encode run %s: %w", rec.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("journal: write %s: %w", path, err)
	}
	return path, nil
}

// RecordRun implements dashboard.RunRecorder.
func (w *Writer) RecordRun(_ context.Context, rec dashboard.RunRecord) error {
	_, err := w.WriteRun(rec)
	return err
}

// Recent reads back up to limit runs, newest first. An empty purpose
// matches every run; limit <= 0 means no limit.
func (w *Writer) Recent(purpose string, limit int) ([]dashboard.RunRecord, error) {
	return ReadDir(w.dir, purpose, limit)
}

// ReadDir loads journal files from dir. See Writer.Recent.
func ReadDir(dir, purpose string, limit int) ([]dashboard.RunRecord, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: list %s: %w", dir, err)
	}

	var runs []dashboard.RunRecord
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("journal: read %s: %w", name, err)
		}
		var rec dashboard.RunRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("journal: decode %s: %w", name, err)
		}
		if purpose != "" && rec.Purpose != purpose {
			continue
		}
		runs = append(runs, rec)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
