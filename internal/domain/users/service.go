package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/audit"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// DefaultRole is assigned at sign-up.
const DefaultRole = auth.RoleProdutor

// Welcomer sends the sign-up greeting. Failures never fail the sign-up.
type Welcomer interface {
	SendWelcome(ctx context.Context, to, fullName string) error
}

// Service handles accounts: sign-up, login, the current-user view and the
// admin role editor.
type Service struct {
	repo        storage.Repository
	jwt         *auth.JWTManager
	welcomer    Welcomer
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(
	repo storage.Repository,
	jwt *auth.JWTManager,
	welcomer Welcomer,
	auditLogger *audit.Logger,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		jwt:         jwt,
		welcomer:    welcomer,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

// Session is the result of a successful login.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   booking.Profile `json:"profile"`
}

// Me is the current user's profile with the permissions of its role.
type Me struct {
	Profile     booking.Profile    `json:"profile"`
	Permissions access.Permissions `json:"permissions"`
}

// SignUp creates a produtor account. A valid access code links the account
// to the producer holding it.
func (s *Service) SignUp(ctx context.Context, input booking.SignUpInput) (*booking.Profile, error) {
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, booking.FieldError("password", fmt.Sprintf("must be %d to %d characters", auth.MinPasswordLength, auth.MaxPasswordLength))
	}

	profile := booking.Profile{
		Email:    input.Email,
		FullName: &input.FullName,
		Role:     string(DefaultRole),
	}
	if input.AccessCode != "" {
		producer, code, err := s.producerForCode(ctx, input.AccessCode)
		if err != nil {
			return nil, err
		}
		profile.ProducerID = producer.ID
		profile.AccessCode = &code
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	profile.PasswordHash = hash

	created, err := s.repo.Profiles().Create(ctx, profile)
	if errors.Is(err, storage.ErrConflict) {
		s.auditLogger.Record(ctx, "user.signup", input.Email, "profile", "", err, nil)
		return nil, fmt.Errorf("%w: email already registered", booking.ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	s.auditLogger.Record(ctx, "user.signup", created.Email, "profile", created.ID, nil, map[string]string{
		"role":        created.Role,
		"producer_id": created.ProducerID,
	})
	if s.welcomer != nil {
		if err := s.welcomer.SendWelcome(ctx, created.Email, input.FullName); err != nil {
			s.logger.Error().Err(err).Str("email", created.Email).Msg("failed to send welcome email")
		}
	}
	return created, nil
}

func (s *Service) producerForCode(ctx context.Context, raw string) (*booking.Producer, string, error) {
	code, err := auth.NormalizeAccessCode(raw)
	if err != nil {
		return nil, "", booking.FieldError("access_code", "is not a valid access code")
	}
	producer, err := s.repo.Producers().GetByAccessCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", booking.FieldError("access_code", "is not a valid access code")
	}
	if err != nil {
		return nil, "", err
	}
	return producer, code, nil
}

// Login checks the password and issues a JWT. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, input booking.LoginInput) (*Session, error) {
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}

	profile, err := s.repo.Profiles().GetByEmail(ctx, input.Email)
	if errors.Is(err, storage.ErrNotFound) {
		s.auditLogger.Record(ctx, "user.login", input.Email, "profile", "", booking.ErrInvalidCredentials, nil)
		return nil, booking.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(profile.PasswordHash, input.Password); err != nil {
		s.auditLogger.Record(ctx, "user.login", input.Email, "profile", profile.ID, booking.ErrInvalidCredentials, nil)
		return nil, booking.ErrInvalidCredentials
	}

	role := auth.NormalizeRole(profile.Role)
	token, err := s.jwt.Generate(profile.ID, role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.auditLogger.Record(ctx, "user.login", profile.Email, "profile", profile.ID, nil, nil)
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwt.Expiry()).UTC(),
		Profile:   *profile,
	}, nil
}

// Resolve loads the actor behind a validated token subject.
func (s *Service) Resolve(ctx context.Context, profileID string) (access.User, error) {
	profile, err := s.repo.Profiles().Get(ctx, profileID)
	if err != nil {
		return access.User{}, err
	}
	return access.UserFromProfile(*profile), nil
}

func (s *Service) Me(ctx context.Context, user access.User) (*Me, error) {
	profile, err := s.repo.Profiles().Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	current := access.UserFromProfile(*profile)
	return &Me{Profile: *profile, Permissions: access.PermissionsFor(current)}, nil
}

func (s *Service) List(ctx context.Context, user access.User, filter storage.ProfileFilter) ([]booking.Profile, error) {
	if !access.PermissionsFor(user).CanManageUsers {
		return nil, booking.ErrForbidden
	}
	return s.repo.Profiles().List(ctx, filter)
}

// UpdateRole changes a profile's role and producer link. The last admin
// cannot be demoted.
func (s *Service) UpdateRole(ctx context.Context, user access.User, id string, update booking.RoleUpdate) (*booking.Profile, error) {
	if !access.PermissionsFor(user).CanManageUsers {
		return nil, booking.ErrForbidden
	}
	if err := booking.Validate(update); err != nil {
		return nil, err
	}

	var updated *booking.Profile
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		target, err := tx.Profiles().Get(ctx, id)
		if err != nil {
			return err
		}
		if auth.NormalizeRole(target.Role) == auth.RoleAdmin && update.Role != string(auth.RoleAdmin) {
			admins, err := tx.Profiles().LockAdmins(ctx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return fmt.Errorf("%w: cannot demote the last admin", booking.ErrConflict)
			}
		}
		if update.Role == string(auth.RoleProdutor) {
			if _, err := tx.Producers().Get(ctx, update.ProducerID); errors.Is(err, storage.ErrNotFound) {
				return booking.FieldError("producer_id", "does not exist")
			} else if err != nil {
				return err
			}
		}
		updated, err = tx.Profiles().UpdateRole(ctx, id, update.Role, update.ProducerID)
		return err
	})

	s.auditLogger.Record(ctx, "user.role_updated", user.Email, "profile", id, err, map[string]string{
		"role":        update.Role,
		"producer_id": update.ProducerID,
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BootstrapAdmin makes sure an admin exists. With no admin yet, it promotes
// the account with email or creates it. It reports whether anything changed.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	admins, err := s.repo.Profiles().CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	existing, err := s.repo.Profiles().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := s.repo.Profiles().UpdateRole(ctx, existing.ID, string(auth.RoleAdmin), ""); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		s.auditLogger.Record(ctx, "user.admin_bootstrap", "system", "profile", existing.ID, nil, map[string]string{"mode": "promoted"})
		return true, nil
	case !errors.Is(err, storage.ErrNotFound):
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	var name *string
	if fullName != "" {
		name = &fullName
	}
	created, err := s.repo.Profiles().Create(ctx, booking.Profile{
		Email:        email,
		FullName:     name,
		Role:         string(auth.RoleAdmin),
		PasswordHash: hash,
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.auditLogger.Record(ctx, "user.admin_bootstrap", "system", "profile", created.ID, nil, map[string]string{"mode": "created"})
	return true, nil
}
