package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// ProjectInput holds the editable fields of a project.
type ProjectInput struct {
	Name        string
	Description string
	Progress    int
	Deadline    *time.Time
	Team        []string
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	if in.Progress < 0 || in.Progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidProject)
	}
	return nil
}

// ProjectService manages the project catalog and keeps one open board per
// project.
type ProjectService struct {
	projects repository.ProjectRepositoryInterface
	boards   *BoardService
	logger   *zap.Logger
}

func NewProjectService(projects repository.ProjectRepositoryInterface, boards *BoardService, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, boards: boards, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, in ProjectInput) (*model.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Progress:    in.Progress,
		Deadline:    in.Deadline,
		Team:        teamOrEmpty(in.Team),
		OwnerID:     ownerID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.boards.OpenBoard(project.ID)
	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*model.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Name = strings.TrimSpace(in.Name)
	project.Description = in.Description
	project.Progress = in.Progress
	project.Deadline = in.Deadline
	project.Team = teamOrEmpty(in.Team)

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and closes its board.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.boards.CloseBoard(id)
	s.logger.Info("Project deleted", zap.String("project_id", id.String()))
	return nil
}

// EnsureBoard opens the board of an existing project. It returns
// repository.ErrProjectNotFound for unknown ids.
func (s *ProjectService) EnsureBoard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return err
	}
	s.boards.OpenBoard(id)
	return nil
}

// OpenAll opens a board for every stored project and returns how many were
// newly opened.
func (s *ProjectService) OpenAll(ctx context.Context) (int, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}
	opened := 0
	for _, p := range projects {
		if s.boards.OpenBoard(p.ID) {
			opened++
		}
	}
	return opened, nil
}

func teamOrEmpty(team []string) []string {
	if team == nil {
		return []string{}
	}
	return team
}
