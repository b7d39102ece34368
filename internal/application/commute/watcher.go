package commute

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

// ConfigWatcher reloads the tunable settings when the config file changes.
// Reloaded settings are delivered on Updates; only the newest pending
// update is kept.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	base    Tuning
	updates chan Tuning
	done    chan struct{}
}

// NewConfigWatcher watches path. Reloaded file values are applied on top of
// base.
func NewConfigWatcher(path string, base Tuning) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		watcher: watcher,
		path:    filepath.Clean(abs),
		base:    base,
		updates: make(chan Tuning, 1),
		done:    make(chan struct{}),
	}

	// Watch the directory so editors that replace the file are seen
	if err := watcher.Add(filepath.Dir(cw.path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go cw.processEvents()

	return cw, nil
}

func (cw *ConfigWatcher) processEvents() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Config watch error: " + err.Error())
		}
	}
}

func (cw *ConfigWatcher) reload() {
	fc, err := LoadConfigFile(cw.path)
	if err != nil {
		util.LogWarn("Ignoring config change", util.F("error", err.Error()))
		return
	}
	tuning := cw.base
	fc.ApplyTuning(&tuning)
	if err := tuning.Validate(); err != nil {
		util.LogWarn("Ignoring invalid config change", util.F("error", err.Error()))
		return
	}

	// Replace any update the loop has not picked up yet
	select {
	case <-cw.updates:
	default:
	}
	cw.updates <- tuning
	util.LogInfo("Config reloaded", util.F("path", cw.path))
}

// Updates delivers reloaded settings
func (cw *ConfigWatcher) Updates() <-chan Tuning {
	return cw.updates
}

func (cw *ConfigWatcher) Close() error {
	err := cw.watcher.Close()
	<-cw.done
	return err
}
