package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

const MaxAnnouncementTitleLength = 200

// ModerationService covers the admin surface: user administration and
// announcements. Every mutating call re-checks the requester's role from
// the store rather than trusting a stale token.
type ModerationService struct {
	users         repository.UserRepository
	announcements repository.AnnouncementRepository
	logger        *slog.Logger
}

func NewModerationService(users repository.UserRepository, announcements repository.AnnouncementRepository, logger *slog.Logger) *ModerationService {
	return &ModerationService{users: users, announcements: announcements, logger: logger}
}

// requireAdmin loads the requester and rejects non-admins.
func (s *ModerationService) requireAdmin(ctx context.Context, requesterID string) (*model.User, error) {
	requester, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("admin access required")
	}
	return requester, nil
}

// ListUsers returns all accounts for the admin dashboard.
func (s *ModerationService) ListUsers(ctx context.Context, requesterID string, limit, offset int) ([]model.User, error) {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx, clamp(limit, offset))
}

// SetSuspended suspends or reinstates an account. Suspended users keep
// their data but cannot log in.
func (s *ModerationService) SetSuspended(ctx context.Context, requesterID, userID string, suspended bool) error {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}
	if requesterID == userID {
		return apperror.Forbidden("you cannot suspend your own account")
	}
	if err := s.users.SetSuspended(ctx, userID, suspended); err != nil {
		return err
	}
	s.logger.Info("user suspension changed",
		slog.String("userID", userID),
		slog.Bool("suspended", suspended),
		slog.String("adminID", requesterID),
	)
	return nil
}

// ChangeRole assigns a new role to an account.
func (s *ModerationService) ChangeRole(ctx context.Context, requesterID, userID string, role model.Role) error {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}
	if !model.ValidRole(role) {
		return apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}
	if requesterID == userID {
		return apperror.Forbidden("you cannot change your own role")
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info("user role changed",
		slog.String("userID", userID),
		slog.String("role", string(role)),
		slog.String("adminID", requesterID),
	)
	return nil
}

// DeleteUser removes an account and everything it owns via cascade.
// Admins cannot delete themselves through the moderation surface; that
// path is the account-deletion flow with its confirmation phrase.
func (s *ModerationService) DeleteUser(ctx context.Context, requesterID, userID string) error {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}
	if requesterID == userID {
		return apperror.Forbidden("use the account deletion flow to delete your own account")
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted by admin",
		slog.String("userID", userID),
		slog.String("adminID", requesterID),
	)
	return nil
}

// Announcements.

type AnnouncementInput struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Type      string     `json:"type"`
	Priority  string     `json:"priority"`
	IsActive  *bool      `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (in AnnouncementInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.ValidationFailed("title", "announcement title is required")
	}
	if len(in.Title) > MaxAnnouncementTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("announcement title must be %d characters or less", MaxAnnouncementTitleLength))
	}
	if strings.TrimSpace(in.Content) == "" {
		return apperror.ValidationFailed("content", "announcement content is required")
	}
	if !model.ValidAnnouncementType(model.AnnouncementType(in.Type)) {
		return apperror.ValidationFailed("type", fmt.Sprintf("unknown announcement type %q", in.Type))
	}
	if !model.ValidAnnouncementPriority(model.AnnouncementPriority(in.Priority)) {
		return apperror.ValidationFailed("priority", fmt.Sprintf("unknown announcement priority %q", in.Priority))
	}
	return nil
}

// CreateAnnouncement publishes a site announcement. Admin only.
func (s *ModerationService) CreateAnnouncement(ctx context.Context, requesterID string, in AnnouncementInput) (*model.Announcement, error) {
	admin, err := s.requireAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	a := &model.Announcement{
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Type:      model.AnnouncementType(in.Type),
		Priority:  model.AnnouncementPriority(in.Priority),
		IsActive:  active,
		ExpiresAt: in.ExpiresAt,
		CreatedBy: admin.ID,
	}
	if err := s.announcements.CreateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("creating announcement: %w", err)
	}
	s.logger.Info("announcement created",
		slog.String("id", a.ID),
		slog.String("adminID", requesterID),
	)
	return a, nil
}

// UpdateAnnouncement replaces an announcement's fields. Admin only.
func (s *ModerationService) UpdateAnnouncement(ctx context.Context, requesterID, id string, in AnnouncementInput) (*model.Announcement, error) {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	a, err := s.announcements.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = strings.TrimSpace(in.Title)
	a.Content = strings.TrimSpace(in.Content)
	a.Type = model.AnnouncementType(in.Type)
	a.Priority = model.AnnouncementPriority(in.Priority)
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	a.ExpiresAt = in.ExpiresAt

	if err := s.announcements.UpdateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("updating announcement: %w", err)
	}
	return a, nil
}

// ListAnnouncements returns every announcement, active or not. Admin only.
func (s *ModerationService) ListAnnouncements(ctx context.Context, requesterID string, limit, offset int) ([]model.Announcement, error) {
	if _, err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.announcements.ListAnnouncements(ctx, clamp(limit, offset))
}

// ListActiveAnnouncements is the public feed: active, unexpired, ordered
// by priority then recency.
func (s *ModerationService) ListActiveAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	return s.announcements.ListActiveAnnouncements(ctx, time.Now())
}
