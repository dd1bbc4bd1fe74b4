package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/textutil"
	"github.com/laundryhub/api/internal/repositories"
)

const profileStatusActive = "active"

var (
	// ErrUserInvalidInput indicates the caller supplied invalid profile data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrUserNotFound indicates the profile does not exist.
	ErrUserNotFound = errors.New("user: not found")
	// ErrUserUnavailable indicates the profile store could not be reached.
	ErrUserUnavailable = errors.New("user: unavailable")
)

// UserServiceDeps bundles collaborators for the user service.
type UserServiceDeps struct {
	Repository repositories.UserRepository
	UnitOfWork repositories.UnitOfWork
	Changes    ChangePublisher
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type userService struct {
	repo    repositories.UserRepository
	unit    repositories.UnitOfWork
	changes changeNotifier
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewUserService constructs a UserService.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Repository == nil {
		return nil, errors.New("user service: repository is required")
	}
	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}
	now := func() time.Time { return clock().UTC() }
	return &userService{
		repo:    deps.Repository,
		unit:    unit,
		changes: changeNotifier{publisher: deps.Changes, logger: logger, now: now},
		now:     now,
		logger:  logger,
	}, nil
}

// EnsureProfile creates the profile on first sight of an identity. Existing profiles are
// returned unchanged.
func (s *userService) EnsureProfile(ctx context.Context, cmd EnsureProfileCommand) (UserProfile, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return UserProfile{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return UserProfile{}, fmt.Errorf("%w: invalid email", ErrUserInvalidInput)
		}
	}
	role := cmd.Role
	switch role {
	case "":
		role = domain.UserRoleUser
	case domain.UserRoleUser, domain.UserRoleStaff, domain.UserRoleAdmin:
	default:
		return UserProfile{}, fmt.Errorf("%w: unknown role %q", ErrUserInvalidInput, cmd.Role)
	}

	var (
		profile UserProfile
		created bool
	)
	err := s.unit.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, userID)
		switch {
		case err == nil:
			profile = existing
			return nil
		case !isRepoNotFound(err):
			return s.mapRepositoryError(err)
		}
		now := s.now()
		profile = UserProfile{
			ID:        userID,
			Email:     email,
			Name:      textutil.Sanitize(cmd.Name),
			Phone:     strings.TrimSpace(cmd.Phone),
			Role:      role,
			Status:    profileStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Upsert(txCtx, profile); err != nil {
			return s.mapRepositoryError(err)
		}
		created = true
		return nil
	})
	if err != nil {
		return UserProfile{}, err
	}
	if created {
		s.logger(ctx, "user.profile.created", map[string]any{"userId": profile.ID, "role": string(profile.Role)})
		s.changes.publish(ctx, changefeed.KeyUsers, profile.ID, changefeed.OpCreate)
	}
	return profile, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserProfile{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return UserProfile{}, s.mapRepositoryError(err)
	}
	return profile, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]UserProfile, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *userService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrUserUnavailable, err)
	default:
		return err
	}
}
