package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/decode"
)

func TestWriteRun(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, err)

	started := time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC)
	path, err := w.WriteRun(dashboard.RunRecord{
		ID:        "r1",
		Purpose:   "trend",
		Status:    dashboard.StatusOK,
		Record:    decode.Record{"executive_summary": "x"},
		StartedAt: started,
	})
	require.NoError(t, err)
	assert.Equal(t, "run_20260309_140500_trend_00001.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"executive_summary": "x"`)
}

func TestRecentFiltersAndOrders(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ctx := context.Background()
	require.NoError(t, w.RecordRun(ctx, dashboard.RunRecord{ID: "a", Purpose: "trend", StartedAt: base}))
	require.NoError(t, w.RecordRun(ctx, dashboard.RunRecord{ID: "b", Purpose: "image", StartedAt: base.Add(time.Minute)}))
	require.NoError(t, w.RecordRun(ctx, dashboard.RunRecord{ID: "c", Purpose: "trend", StartedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir(), "notes.txt"), []byte("skip"), 0o644))

	runs, err := w.Recent("", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)

	runs, err = w.Recent("trend", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c", runs[0].ID)
}

func TestReadDirMissing(t *testing.T) {
	runs, err := ReadDir(filepath.Join(t.TempDir(), "absent"), "", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
