package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

const MaxProjectNameLength = 100

// ProjectService manages projects, the grouping unit above snippets.
// Projects are owner-only for mutation; snippet visibility is decided per
// snippet, not per project.
type ProjectService struct {
	projects repository.ProjectRepository
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, snippets repository.SnippetRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, snippets: snippets, logger: logger}
}

type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in CreateProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}
	if len(name) > MaxProjectNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("project name must be %d characters or less", MaxProjectNameLength))
	}

	project := &model.Project{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsPublic:    in.IsPublic,
		OwnerID:     ownerID,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("ownerID", ownerID),
	)
	return project, nil
}

// Get returns a project along with the snippets inside it that the
// requester is allowed to see. A private project is only visible to its
// owner; like snippets, denial reads as NotFound.
func (s *ProjectService) Get(ctx context.Context, id, viewerID string) (*model.Project, []model.Snippet, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !project.IsPublic && project.OwnerID != viewerID {
		return nil, nil, apperror.NotFound("project", id)
	}

	snippets, err := s.snippets.ListSnippetsByProject(ctx, id, viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing project snippets: %w", err)
	}
	return project, snippets, nil
}

type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

func (s *ProjectService) Update(ctx context.Context, id, requesterID string, in UpdateProjectInput) (*model.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != requesterID {
		if !project.IsPublic {
			return nil, apperror.NotFound("project", id)
		}
		return nil, apperror.Forbidden("only the project owner can update it")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "project name is required")
		}
		if len(name) > MaxProjectNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("project name must be %d characters or less", MaxProjectNameLength))
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsPublic != nil {
		project.IsPublic = *in.IsPublic
	}

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

// Delete removes a project and, via cascade, every snippet in it.
func (s *ProjectService) Delete(ctx context.Context, id, requesterID string) error {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}
	if project.OwnerID != requesterID {
		if !project.IsPublic {
			return apperror.NotFound("project", id)
		}
		return apperror.Forbidden("only the project owner can delete it")
	}

	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", slog.String("id", id), slog.String("ownerID", requesterID))
	return nil
}

// ListMine returns the requester's own projects.
func (s *ProjectService) ListMine(ctx context.Context, ownerID string, limit, offset int) ([]model.Project, error) {
	return s.projects.ListProjectsByOwner(ctx, ownerID, clamp(limit, offset))
}
