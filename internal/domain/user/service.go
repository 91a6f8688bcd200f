package user

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/example/varsha-shop/internal/apperror"
	"github.com/example/varsha-shop/internal/auth"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/model"
)

const adminDisplayName = "Admin"

var checkPassword = auth.CheckPassword

var (
	ErrUserNotFound        = apperror.New(apperror.ErrNotFound, "User not found")
	ErrEmailTaken          = apperror.New(apperror.ErrConflict, "Email already registered")
	ErrInvalidCredentials  = apperror.New(apperror.ErrUnauthorized, "Invalid credentials")
	ErrInvalidName         = apperror.Validation("name must be at least 2 characters")
	ErrInvalidEmail        = apperror.Validation("valid email is required")
	ErrCredentialsRequired = apperror.Validation("email and password are required")
)

// TokenIssuer signs session tokens. *auth.JWTService satisfies it.
type TokenIssuer interface {
	IssueToken(user model.User) (string, time.Time, error)
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what signup and login hand back to the client.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      model.PublicUser `json:"user"`
}

// Service handles account operations
type Service struct {
	store  store.DocumentStoreInterface
	tokens TokenIssuer
	now    func() time.Time
}

// NewService creates a new user service
func NewService(ds store.DocumentStoreInterface, tokens TokenIssuer) *Service {
	return &Service{
		store:  ds,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a customer account and signs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if len([]rune(name)) < 2 {
		return nil, ErrInvalidName
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, auth.ErrPasswordTooShort
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.FindUserByEmail(email) != -1 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := model.User{
		ID:           model.NewID(model.UserIDPrefix),
		Name:         name,
		Email:        email,
		Role:         model.RoleCustomer,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	doc.Users = append([]model.User{u}, doc.Users...)
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	return s.session(u)
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrCredentialsRequired
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindUserByEmail(email)
	if idx == -1 {
		checkPassword(in.Password, auth.PlaceholderHash())
		return nil, ErrInvalidCredentials
	}

	u := doc.Users[idx]
	if !checkPassword(in.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

// Me returns the current account without its credential.
func (s *Service) Me(ctx context.Context, userID string) (*model.PublicUser, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.FindUser(userID)
	if idx == -1 {
		return nil, ErrUserNotFound
	}

	pub := doc.Users[idx].Public()
	return &pub, nil
}

// EnsureAdmin makes sure an admin account exists for email: an existing
// account is promoted, otherwise one is created. It is a no-op when the
// credentials are unusable or the account is already an admin, and reports
// whether anything was written.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(password) < auth.MinPasswordLength {
		return false, nil
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	if idx := doc.FindUserByEmail(email); idx != -1 {
		u := &doc.Users[idx]
		if u.Role == model.RoleAdmin {
			return false, nil
		}
		u.Role = model.RoleAdmin
		u.UpdatedAt = s.now()
		if err := s.store.Save(ctx, doc); err != nil {
			return false, err
		}
		log.Printf("[User] Promoted %s to admin", email)
		return true, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	now := s.now()
	u := model.User{
		ID:           model.NewID(model.UserIDPrefix),
		Name:         adminDisplayName,
		Email:        email,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	doc.Users = append([]model.User{u}, doc.Users...)
	if err := s.store.Save(ctx, doc); err != nil {
		return false, err
	}

	log.Printf("[User] Admin user created: %s", email)
	return true, nil
}

func (s *Service) session(u model.User) (*Session, error) {
	token, expiresAt, err := s.tokens.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return strings.Contains(email, "@") && len(email) >= 6
}
