package config

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/log"
)

// Store is the live settings store. It snapshots a viper instance into a
// Config and writes mode changes back to the config file.
type Store struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg Config
}

// NewStore loads the current settings from v.
func NewStore(v *viper.Viper) (*Store, error) {
	s := &Store{v: v}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the config file, if any, and replaces the snapshot.
// On error the previous snapshot is kept.
func (s *Store) Reload() error {
	if path := s.v.ConfigFileUsed(); path != "" {
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Defaults()
	if err := s.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if path := s.v.ConfigFileUsed(); path != "" {
		table, err := LoadColors(path)
		if err != nil {
			return err
		}
		cfg.Colors = table
	} else {
		cfg.Colors = s.v.GetStringMapString("colors")
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	log.Debug(log.CatConfig, "Settings loaded", "path", s.v.ConfigFileUsed(), "colors", len(cfg.Colors))
	return nil
}

// Path returns the config file in use, or empty.
func (s *Store) Path() string {
	return s.v.ConfigFileUsed()
}

// Config returns a copy of the current snapshot.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.Colors = maps.Clone(s.cfg.Colors)
	cfg.Flags = maps.Clone(s.cfg.Flags)
	return cfg
}

// Colors returns a copy of the color table.
func (s *Store) Colors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.cfg.Colors)
}

// Mode returns the highlight mode. It was validated on load.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, _ := s.cfg.Mode()
	return m
}

func (s *Store) HighlightValues() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.HighlightValues
}

func (s *Store) GutterIcon() (icon.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Gutter()
}

func (s *Store) MinDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MinDelay()
}

// SetMode changes the highlight mode and saves it to the config file.
func (s *Store) SetMode(mode Mode) error {
	path := s.v.ConfigFileUsed()
	if path == "" {
		// No file: keep the change for the life of the process.
		s.v.Set("highlight", string(mode))
	}
	s.mu.Lock()
	s.cfg.Highlight = string(mode)
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := SaveMode(path, mode); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save highlight mode", err, "path", path, "mode", mode)
		return err
	}
	log.Info(log.CatConfig, "Saved highlight mode", "path", path, "mode", mode)
	return nil
}
