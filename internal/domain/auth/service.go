package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/pkg/logger"
)

const (
	minPasswordLength = 8
	maxLoginAttempts  = 5
	lockDuration      = 15 * time.Minute
)

// Service provides authentication and user management.
type Service struct {
	users     UserRepository
	jwt       *JWTService
	txManager tx.Manager
}

// NewService creates a new auth service.
func NewService(users UserRepository, jwtService *JWTService, txManager tx.Manager) *Service {
	return &Service{
		users:     users,
		jwt:       jwtService,
		txManager: txManager,
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Login authenticates by email and password and issues an access token.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		user.RecordFailedLogin(maxLoginAttempts, lockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.FromContext(ctx).Warnw("record failed login", "error", uerr)
		}
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.FromContext(ctx).Warnw("record successful login", "error", err)
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterInput bootstraps a new tenant with its first administrator.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a fresh tenant and its ADMIN user.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := NewUser(id.New(), input.Email, string(hash), appctx.RoleAdmin)
	user.Name = input.Name
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("tenant registered",
		"tenant_id", user.TenantID, "user_id", user.ID)
	return user, nil
}

// CreateUserInput adds a user to the caller's tenant.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     appctx.Role
}

// CreateUser creates a user inside the caller's tenant. Admin only; the
// handler enforces the capability check before calling.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := NewUser(tenantID, input.Email, string(hash), input.Role)
	user.Name = input.Name
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns a user from the caller's tenant.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return s.users.GetByID(ctx, tenantID, userID)
}

// List returns users of the caller's tenant.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int64, error) {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return nil, 0, apperror.NewUnauthorized("authentication required")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.users.List(ctx, tenantID, limit, offset)
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, current, next string) error {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperror.NewUnauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.users.Update(txCtx, user)
	})
}

// SetActive enables or disables a user account.
func (s *Service) SetActive(ctx context.Context, userID id.ID, active bool) error {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return apperror.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.users.Update(txCtx, user)
	})
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}
	return nil
}
