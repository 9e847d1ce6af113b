package telemetry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig watches a YAML config file and applies sample-rate changes at
// runtime without restarting the host. Only the sample rate is hot-swapped;
// transport and logging changes need a re-init. The returned function stops
// the watcher.
func (t *Telemetry) WatchConfig(path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	logger := t.Logger.NewComponentLogger("config-watcher")

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) &&
					!strings.HasSuffix(ev.Name, filepath.Base(path)) {
					continue
				}
				if err := t.ReloadSampleRate(path); err != nil {
					logger.WithError(err).Warn("config reload rejected")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("config watcher error")
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// ReloadSampleRate re-reads the config file and swaps the sampler rate.
// Traces already in flight keep their original decision.
func (t *Telemetry) ReloadSampleRate(path string) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	rate := cfg.EffectiveSampleRate()
	if err := t.Sampler.SetRate(rate); err != nil {
		return err
	}
	t.Logger.Infof("sample rate updated to %g", rate)
	return nil
}
