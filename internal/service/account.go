package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

// DeleteConfirmationPhrase must be typed verbatim to delete an account.
const DeleteConfirmationPhrase = "DELETE MY ACCOUNT"

// AccountService handles the self-service account lifecycle: deletion and
// data export.
type AccountService struct {
	users     repository.UserRepository
	projects  repository.ProjectRepository
	snippets  repository.SnippetRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	projects repository.ProjectRepository,
	snippets repository.SnippetRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		projects:  projects,
		snippets:  snippets,
		passwords: passwords,
		logger:    logger,
	}
}

// Delete permanently removes the requester's account after they retype
// the confirmation phrase and, for password accounts, their password.
// Everything they own goes with it via cascade.
func (s *AccountService) Delete(ctx context.Context, userID, confirmation, password string) error {
	if confirmation != DeleteConfirmationPhrase {
		return apperror.ValidationFailed("confirmation",
			fmt.Sprintf("type %q to confirm account deletion", DeleteConfirmationPhrase))
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	// OAuth-only accounts have no password to verify.
	if user.PasswordHash != "" {
		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			return apperror.Unauthorized("password is incorrect")
		}
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("account deleted", slog.String("userID", userID))
	return nil
}

// DataExport bundles everything the user owns for download.
type DataExport struct {
	ExportedAt time.Time       `json:"exportedAt"`
	User       *model.User     `json:"user"`
	Projects   []model.Project `json:"projects"`
	Snippets   []model.Snippet `json:"snippets"`
	StarredIDs []string        `json:"starredSnippetIds"`
}

// Export collects the requester's profile, projects, snippets and starred
// snippet IDs into one structure. The owner listings are paged until
// exhaustion so accounts larger than one page export completely.
// PasswordHash never serializes.
func (s *AccountService) Export(ctx context.Context, userID string) (*DataExport, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.allProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("exporting projects: %w", err)
	}
	snippets, err := s.allSnippets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("exporting snippets: %w", err)
	}
	starred, err := s.snippets.ListStarredIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("exporting stars: %w", err)
	}

	return &DataExport{
		ExportedAt: time.Now().UTC(),
		User:       user,
		Projects:   projects,
		Snippets:   snippets,
		StarredIDs: starred,
	}, nil
}

// allProjects pages through the owner's projects. A short page means the
// store had nothing further.
func (s *AccountService) allProjects(ctx context.Context, userID string) ([]model.Project, error) {
	var all []model.Project
	for offset := 0; ; offset += MaxListLimit {
		page, err := s.projects.ListProjectsByOwner(ctx, userID,
			repository.ListOptions{Limit: MaxListLimit, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxListLimit {
			return all, nil
		}
	}
}

func (s *AccountService) allSnippets(ctx context.Context, userID string) ([]model.Snippet, error) {
	var all []model.Snippet
	for offset := 0; ; offset += MaxListLimit {
		page, err := s.snippets.ListSnippetsByOwner(ctx, userID, userID,
			repository.ListOptions{Limit: MaxListLimit, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxListLimit {
			return all, nil
		}
	}
}
