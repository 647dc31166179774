package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridloal/fashion-dropship-store/internal/user/domain"
	"github.com/ridloal/fashion-dropship-store/internal/user/repository" // Untuk ErrUserConflict, dll.
	"github.com/ridloal/fashion-dropship-store/internal/user/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func TestUserService_Register(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	userServiceInstance := NewUserService(mockRepo, testSecret, time.Hour) // Gunakan konstruktor asli

	ctx := context.TODO()
	registerReq := domain.RegisterRequest{
		Email:    " Test@Example.com ",
		Name:     "Jane Doe",
		Password: "password123",
	}

	t.Run("Successful registration", func(t *testing.T) {
		// mock.AnythingOfType("*domain.User") karena password hash akan berbeda setiap kali
		mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleCustomer && u.PasswordHash != "password123"
		})).Return(nil).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Contains(t, user.ID, "user_")
		assert.Empty(t, user.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("User already exists", func(t *testing.T) {
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrUserConflict).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.EqualError(t, err, ErrUserAlreadyExists.Error()) // Membandingkan dengan error yang didefinisikan di service
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error on CreateUser", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(expectedErr).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "could not save user") // Cek pembungkusan error
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_Login(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	userServiceInstance := NewUserService(mockRepo, testSecret, time.Hour)
	ctx := context.TODO()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	newMockUser := func() *domain.User {
		return &domain.User{
			ID:           "user-123",
			Email:        "test@example.com",
			Role:         domain.RoleCustomer,
			PasswordHash: string(hashedPassword),
		}
	}

	loginReq := domain.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}

	t.Run("Successful login", func(t *testing.T) {
		mockRepo.On("GetUserByEmail", ctx, loginReq.Email).Return(newMockUser(), nil).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		require.NoError(t, err)
		assert.Equal(t, "user-123", resp.User.ID)
		assert.Empty(t, resp.User.PasswordHash)
		assert.NotEmpty(t, resp.Token)

		claims, err := userServiceInstance.VerifyToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, domain.RoleCustomer, claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("User not found", func(t *testing.T) {
		mockRepo.On("GetUserByEmail", ctx, loginReq.Email).Return(nil, repository.ErrUserNotFound).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		assert.Nil(t, resp)
		assert.EqualError(t, err, ErrInvalidCredentials.Error())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Incorrect password", func(t *testing.T) {
		// Password hash di mockUser tidak akan cocok dengan "wrongpassword"
		mockRepo.On("GetUserByEmail", ctx, loginReq.Email).Return(newMockUser(), nil).Once()

		resp, err := userServiceInstance.Login(ctx, domain.LoginRequest{Email: "test@example.com", Password: "wrongpassword"})

		assert.Nil(t, resp)
		assert.EqualError(t, err, ErrInvalidCredentials.Error())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error on GetUserByEmail", func(t *testing.T) {
		mockRepo.On("GetUserByEmail", ctx, loginReq.Email).Return(nil, errors.New("some db error")).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		assert.Nil(t, resp)
		assert.EqualError(t, err, ErrInvalidCredentials.Error())
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_VerifyToken(t *testing.T) {
	svc := NewUserService(new(mocks.MockUserRepository), testSecret, time.Hour).(*userService)
	user := &domain.User{ID: "user-1", Email: "a@b.c", Role: domain.RoleAdmin}

	t.Run("Expired token", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := svc.signToken(user)
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewUserService(new(mocks.MockUserRepository), "other", time.Hour).(*userService)
		token, err := other.signToken(user)
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Rejects other signing methods", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-1"})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.VerifyToken(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(domain.RoleAdmin, domain.RoleAdmin))
	assert.True(t, HasPermission(domain.RoleAdmin, domain.RoleCustomer))
	assert.True(t, HasPermission(domain.RoleCustomer, domain.RoleCustomer))
	assert.False(t, HasPermission(domain.RoleCustomer, domain.RoleAdmin))
	assert.False(t, HasPermission("", domain.RoleCustomer))
}

func TestUserService_EnsureAdmin(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	svc := NewUserService(mockRepo, testSecret, time.Hour)
	ctx := context.TODO()

	t.Run("Creates admin when missing", func(t *testing.T) {
		mockRepo.On("GetUserByEmail", ctx, "admin@store.test").Return(nil, repository.ErrUserNotFound).Once()
		mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.Name == "Store Administrator"
		})).Return(nil).Once()

		admin, err := svc.EnsureAdmin(ctx, "Admin@Store.test", "change-me-admin")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, admin.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Keeps existing account", func(t *testing.T) {
		existing := &domain.User{ID: "user-9", Email: "admin@store.test", Role: domain.RoleAdmin, PasswordHash: "x"}
		mockRepo.On("GetUserByEmail", ctx, "admin@store.test").Return(existing, nil).Once()

		admin, err := svc.EnsureAdmin(ctx, "admin@store.test", "whatever")

		require.NoError(t, err)
		assert.Equal(t, "user-9", admin.ID)
		assert.Empty(t, admin.PasswordHash)
		mockRepo.AssertExpectations(t)
	})
}
