package project

import (
	"context"
	"fmt"
	"log/slog"
)

// Service backs the project gallery: listing, creating, renaming, and
// deleting projects outside of an editing session.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Projects returns every known project, newest first.
func (s *Service) Projects(ctx context.Context) ([]*Project, error) {
	return s.store.List(ctx)
}

// Create persists and returns a fresh empty project.
func (s *Service) Create(ctx context.Context) (*Project, error) {
	p := New()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("project created", "project_id", p.ID)
	}
	return p, nil
}

// Rename updates a project's title.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project not found")
	}

	p.Title = title
	if err := s.store.Save(ctx, p); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("project renamed", "project_id", id)
	}
	return nil
}

// Delete removes a project's record. The frame images it referenced are
// left on disk.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("project deleted", "project_id", id)
	}
	return nil
}
