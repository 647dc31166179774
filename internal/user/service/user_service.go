package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/user/domain"
	"github.com/ridloal/fashion-dropship-store/internal/user/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	DefaultTokenTTL = 7 * 24 * time.Hour
	adminName       = "Store Administrator"
)

type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	VerifyToken(tokenString string) (*domain.Claims, error)
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}

type userService struct {
	repo      repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewUserService(repo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) UserService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &userService{repo: repo, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL, now: time.Now}
}

// HasPermission reports whether role satisfies required. Admins pass every check.
func HasPermission(role, required domain.Role) bool {
	switch required {
	case domain.RoleAdmin:
		return role == domain.RoleAdmin
	case domain.RoleCustomer:
		return role == domain.RoleCustomer || role == domain.RoleAdmin
	}
	return false
}

func newUserID() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *userService) createUser(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Register: failed to hash password", err)
		return nil, fmt.Errorf("could not process registration: %w", err)
	}

	user := &domain.User{
		ID:           newUserID(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hashedPassword),
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserConflict) {
			return nil, ErrUserAlreadyExists
		}
		logger.Error("Register: failed to create user in repo", err)
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return user, nil
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	// Validasi dasar (sebagian sudah dilakukan oleh Gin `binding:"required"`)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	name := strings.TrimSpace(req.Name)
	return s.createUser(ctx, email, name, req.Password, domain.RoleCustomer)
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logger.Error("Login: failed to get user by email", err)
		}
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil { // Password tidak cocok
		return nil, ErrInvalidCredentials
	}

	tokenString, err := s.signToken(user)
	if err != nil {
		logger.Error("Login: failed to sign token", err)
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return &domain.LoginResponse{
		User:  *user,
		Token: tokenString,
	}, nil
}

func (s *userService) signToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     s.now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *userService) VerifyToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := mc["user_id"].(string)
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}
	return &domain.Claims{UserID: userID, Email: email, Role: domain.Role(role)}, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin creates the store administrator account unless the email is already registered.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			logger.Warn("EnsureAdmin: %s exists but is not an admin", email)
		}
		existing.PasswordHash = ""
		return existing, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	admin, err := s.createUser(ctx, email, adminName, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	logger.Info("Admin account %s created", email)
	return admin, nil
}
