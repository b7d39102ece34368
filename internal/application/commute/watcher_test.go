package commute

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTuning(t *testing.T, w *ConfigWatcher) (Tuning, bool) {
	t.Helper()
	select {
	case tuning := <-w.Updates():
		return tuning, true
	case <-time.After(3 * time.Second):
		return Tuning{}, false
	}
}

func TestConfigWatcher_ReloadsTuning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"extra_minutes": 22}`), 0644))

	base := DefaultClockConfig().Tuning
	w, err := NewConfigWatcher(path, base)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"extra_minutes": 5, "bar": {"green": 1, "yellow": 2, "red": 5, "pixel_minutes": 3}}`), 0644))

	tuning, ok := waitForTuning(t, w)
	require.True(t, ok, "expected a reload after writing the config file")
	assert.Equal(t, 5.0, tuning.ExtraMinutes)
	assert.Equal(t, 5, tuning.BarScale.Red)
	assert.Equal(t, 3.0, tuning.BarScale.PixelMinutes)
	assert.Equal(t, base.Thresholds, tuning.Thresholds)
}

func TestConfigWatcher_IgnoresInvalidAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	w, err := NewConfigWatcher(path, DefaultClockConfig().Tuning)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"extra_minutes": 1}`), 0644))
	require.NoError(t, os.WriteFile(path, []byte(`{"extra_minutes": -4}`), 0644))

	select {
	case tuning := <-w.Updates():
		t.Fatalf("unexpected reload: %+v", tuning)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewConfigWatcher_MissingDirectory(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "nope", "config.json"), Tuning{})
	assert.Error(t, err)
}
