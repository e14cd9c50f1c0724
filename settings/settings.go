// Package settings stores user preferences as typed, observable values
// backed by the settings key/value table. It is an injected repository:
// there is no process-wide settings singleton.
package settings

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
)

// Theme selects the host UI color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Quality selects the export output resolution.
type Quality string

const (
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality2160p Quality = "2160p"
)

// Height returns the output height in pixels for the quality setting.
func (q Quality) Height() int {
	switch q {
	case Quality720p:
		return 720
	case Quality2160p:
		return 2160
	default:
		return 1080
	}
}

const (
	keyTheme      = "app_theme"
	keyQuality    = "export_quality"
	keyOnboarding = "onboarding_completed"
)

// Store reads and writes preferences and notifies observers on every
// successful write.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu        sync.Mutex
	nextID    int
	observers map[string]map[int]func(string)
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:        db,
		logger:    logger,
		observers: make(map[string]map[int]func(string)),
	}
}

// Theme returns the stored theme, defaulting to ThemeSystem.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, err := s.get(ctx, keyTheme)
	if err != nil {
		return ThemeSystem, err
	}
	switch Theme(v) {
	case ThemeLight, ThemeDark:
		return Theme(v), nil
	default:
		return ThemeSystem, nil
	}
}

func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	return s.set(ctx, keyTheme, string(t))
}

// ObserveTheme registers fn to run on every theme change. The returned
// function cancels the registration.
func (s *Store) ObserveTheme(fn func(Theme)) func() {
	return s.observe(keyTheme, func(v string) { fn(Theme(v)) })
}

// ExportQuality returns the stored export quality, defaulting to 1080p.
func (s *Store) ExportQuality(ctx context.Context) (Quality, error) {
	v, err := s.get(ctx, keyQuality)
	if err != nil {
		return Quality1080p, err
	}
	switch Quality(v) {
	case Quality720p, Quality2160p:
		return Quality(v), nil
	default:
		return Quality1080p, nil
	}
}

func (s *Store) SetExportQuality(ctx context.Context, q Quality) error {
	return s.set(ctx, keyQuality, string(q))
}

func (s *Store) ObserveExportQuality(fn func(Quality)) func() {
	return s.observe(keyQuality, func(v string) { fn(Quality(v)) })
}

// OnboardingCompleted reports whether the user has finished onboarding.
// Defaults to false.
func (s *Store) OnboardingCompleted(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, keyOnboarding)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) SetOnboardingCompleted(ctx context.Context, done bool) error {
	v := "false"
	if done {
		v = "true"
	}
	return s.set(ctx, keyOnboarding, v)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("setting updated", "key", key, "value", value)
	}
	s.notify(key, value)
	return nil
}

func (s *Store) observe(key string, fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	if s.observers[key] == nil {
		s.observers[key] = make(map[int]func(string))
	}
	s.observers[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers[key], id)
	}
}

func (s *Store) notify(key, value string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.observers[key]))
	for _, fn := range s.observers[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}
