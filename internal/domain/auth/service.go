package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
)

// RoleAdmin is the only role the system issues.
const RoleAdmin = "admin"

// DevLogin is the configuration-gated bootstrap credential pair. When
// enabled it bypasses the stored-user check entirely, so it must only be
// switched on for development.
type DevLogin struct {
	Enabled  bool
	Email    string
	Password string
}

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Store    store.Store
	Tokens   *TokenIssuer
	Hasher   *PasswordHasher
	Logger   *logging.Logger
	DevLogin DevLogin
}

// Service validates credentials and issues and verifies session tokens.
type Service struct {
	store    store.Store
	tokens   *TokenIssuer
	hasher   *PasswordHasher
	logger   *logging.Logger
	devLogin DevLogin
}

// NewService wires a Service using the supplied options.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.new", "auth service requires a store")
	}
	if opts.Tokens == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.new", "auth service requires a token issuer")
	}
	if opts.Hasher == nil {
		opts.Hasher = NewPasswordHasher(0)
	}
	return &Service{
		store:    opts.Store,
		tokens:   opts.Tokens,
		hasher:   opts.Hasher,
		logger:   opts.Logger,
		devLogin: opts.DevLogin,
	}, nil
}

// Register creates a new admin user and returns a session token for it.
func (s *Service) Register(ctx context.Context, email, password, name string) (string, Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return "", Identity{}, errors.New(errors.KindValidation, "auth.register", "email, password and name are required")
	}

	existing, err := s.findUser(ctx, email)
	if err != nil {
		return "", Identity{}, err
	}
	if existing != nil {
		return "", Identity{}, errors.New(errors.KindConflict, "auth.register", "user with this email already exists")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return "", Identity{}, errors.Wrap(errors.KindAuth, "auth.register", "failed to hash password", err)
	}

	doc := store.Document{
		"email":     email,
		"password":  hashed,
		"name":      name,
		"role":      RoleAdmin,
		"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
	}
	stored, err := s.store.Add(ctx, store.CollectionAdminUsers, doc)
	if err != nil {
		return "", Identity{}, errors.Wrap(errors.KindStorage, "auth.register", "failed to store user", err)
	}

	id := Identity{ID: stored.ID(), Email: email, Name: name, Role: RoleAdmin}
	token, err := s.tokens.Generate(id)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// Login checks the credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", Identity{}, errors.New(errors.KindValidation, "auth.login", "email and password are required")
	}

	if id, ok := s.checkDevLogin(email, password); ok {
		if s.logger != nil {
			s.logger.WarnTag("Auth", "dev login used for %s", email)
		}
		token, err := s.tokens.Generate(id)
		if err != nil {
			return "", Identity{}, err
		}
		return token, id, nil
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return "", Identity{}, err
	}
	if user == nil {
		return "", Identity{}, errors.New(errors.KindAuth, "auth.login", "invalid credentials")
	}
	if err := s.hasher.Compare(user.String("password"), password); err != nil {
		return "", Identity{}, errors.New(errors.KindAuth, "auth.login", "invalid credentials")
	}

	role := user.String("role")
	if role == "" {
		role = RoleAdmin
	}
	id := Identity{
		ID:    user.ID(),
		Email: user.String("email"),
		Name:  user.String("name"),
		Role:  role,
	}
	token, err := s.tokens.Generate(id)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// Verify validates a session token and returns its identity claims.
func (s *Service) Verify(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// checkDevLogin matches the bootstrap credential pair when the toggle is on.
func (s *Service) checkDevLogin(email, password string) (Identity, bool) {
	if !s.devLogin.Enabled {
		return Identity{}, false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.devLogin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.devLogin.Password)) == 1
	if !emailOK || !passOK {
		return Identity{}, false
	}
	return Identity{
		ID:    "admin-user-id",
		Email: s.devLogin.Email,
		Name:  "Admin User",
		Role:  RoleAdmin,
	}, true
}

// findUser scans admin_users for a case-insensitive email match.
func (s *Service) findUser(ctx context.Context, email string) (store.Document, error) {
	users, err := s.store.GetAll(ctx, store.CollectionAdminUsers)
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "auth.find_user", "failed to read users", err)
	}
	for _, user := range users {
		if strings.EqualFold(user.String("email"), email) {
			return user, nil
		}
	}
	return nil, nil
}
