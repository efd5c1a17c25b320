package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML or TOML config file and watches it for changes.
// The format is picked from the file extension; anything but .toml is YAML.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched config file.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that reloads the config on file
// changes. Changes to the topology and multicast files named by the config
// trigger a reload as well; the watched set follows the config across
// reloads. The returned stop function waits for an in-flight reload and
// its OnChange callbacks to finish.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	ws := &watchSet{w: w, paths: make(map[string]struct{})}
	if err := ws.sync(l.watchedFiles()); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := l.Reload(); err != nil {
					slog.Warn("config reload failed, keeping previous config", "path", ev.Name, "err", err)
					continue
				}
				if err := ws.sync(l.watchedFiles()); err != nil {
					slog.Warn("config watcher resync failed", "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}, nil
}

// watchSet keeps a watcher's paths equal to a wanted list.
type watchSet struct {
	w     *fsnotify.Watcher
	paths map[string]struct{}
}

// sync adds the files missing from the watcher and removes the ones no
// longer wanted. Every failure is reported; the rest still applies.
func (s *watchSet) sync(files []string) error {
	want := make(map[string]struct{}, len(files))
	var errs []error
	for _, p := range files {
		want[p] = struct{}{}
		if _, ok := s.paths[p]; ok {
			continue
		}
		if err := s.w.Add(p); err != nil {
			errs = append(errs, fmt.Errorf("config watcher add %s: %w", p, err))
			continue
		}
		s.paths[p] = struct{}{}
	}
	for p := range s.paths {
		if _, ok := want[p]; ok {
			continue
		}
		if err := s.w.Remove(p); err != nil {
			slog.Debug("config watcher remove", "path", p, "err", err)
		}
		delete(s.paths, p)
	}
	return errors.Join(errs...)
}

func (l *Loader) watchedFiles() []string {
	cfg := l.Config()
	files := []string{l.path}
	if cfg.Topology != "" {
		files = append(files, cfg.Topology)
	}
	if cfg.Multicast != "" {
		files = append(files, cfg.Multicast)
	}
	return files
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Decode(data, filepath.Ext(l.path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	// Input files are relative to the config file.
	base := filepath.Dir(l.path)
	cfg.Topology = resolve(base, cfg.Topology)
	cfg.Multicast = resolve(base, cfg.Multicast)
	cfg.OutputDir = resolve(base, cfg.OutputDir)
	return cfg, nil
}

// Decode parses a config document and applies defaults. ext selects the
// format (".toml" or YAML otherwise).
func Decode(data []byte, ext string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(ext, ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
