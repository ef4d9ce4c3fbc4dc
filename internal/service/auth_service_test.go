package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email, phone string) error {
	args := m.Called(ctx, id, name, email, phone)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedRole  model.Role
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleUser,
		},
		{
			name:  "admin registration",
			input: RegisterInput{Name: "Root", Email: "root@example.com", Password: "pw", Role: model.RoleAdmin},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "root@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedRole: model.RoleAdmin,
		},
		{
			name:  "email taken",
			input: RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "bob@example.com").Return(&model.User{Email: "bob@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "lost insert race",
			input: RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:          "missing password",
			input:         RegisterInput{Name: "Bob", Email: "bob@example.com"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret", time.Hour), new(MockTokenStore))
			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, user.Role)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	require.NoError(t, err)
	stored := &model.User{ID: uuid.New(), Email: "test@example.com", PasswordHash: string(hashed), Role: model.RoleUser}

	tests := []struct {
		name          string
		password      string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedMsg   string
	}{
		{
			name:     "successful login",
			password: "password123",
			role:     model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailAndRole", mock.Anything, "test@example.com", model.RoleUser).Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			role:     model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailAndRole", mock.Anything, "test@example.com", model.RoleUser).Return(stored, nil)
			},
			expectedError: apperrors.ErrWrongPassword,
		},
		{
			name:     "user role cannot log in as admin",
			password: "password123",
			role:     model.RoleAdmin,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailAndRole", mock.Anything, "test@example.com", model.RoleAdmin).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
			expectedMsg:   "admin doesn't exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			jwtService := auth.NewJWTService("test-secret", time.Hour)

			svc := NewAuthService(mockRepo, jwtService, new(MockTokenStore))
			token, user, err := svc.Login(context.Background(), "test@example.com", tt.password, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedMsg != "" {
					assert.Equal(t, tt.expectedMsg, err.Error())
				}
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, stored.ID, claims.UserID)
				assert.Equal(t, model.RoleUser, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	user := &model.User{ID: uuid.New(), Email: "a@b.c", Role: model.RoleUser}
	token, issued, err := jwtService.GenerateToken(user)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
		_, err := svc.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("tampered token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
		_, err := svc.Authenticate(context.Background(), token+"x")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("revoked token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("IsRevoked", mock.Anything, issued.RegisteredClaims.ID).Return(true, nil)
		svc := NewAuthService(new(MockUserRepository), jwtService, store)
		_, err := svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		store.AssertExpectations(t)
	})

	t.Run("valid token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("IsRevoked", mock.Anything, issued.RegisteredClaims.ID).Return(false, nil)
		svc := NewAuthService(new(MockUserRepository), jwtService, store)
		claims, err := svc.Authenticate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	_, claims, err := jwtService.GenerateToken(&model.User{ID: uuid.New(), Role: model.RoleUser})
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("Revoke", mock.Anything, claims.RegisteredClaims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, store)
	require.NoError(t, svc.Logout(context.Background(), claims))
	store.AssertExpectations(t)
}

func TestAuthService_ChangePassword(t *testing.T) {
	id := uuid.New()

	t.Run("stores a bcrypt hash", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id}, nil)
		mockRepo.On("UpdatePassword", mock.Anything, id, mock.MatchedBy(func(hash string) bool {
			return hash != "s3cret" && bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")) == nil
		})).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		require.NoError(t, svc.ChangePassword(context.Background(), id, "s3cret"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		err := svc.ChangePassword(context.Background(), id, "s3cret")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("empty password", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), auth.NewJWTService("k", 0), new(MockTokenStore))
		err := svc.ChangePassword(context.Background(), id, "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	id := uuid.New()
	current := func() *model.User {
		return &model.User{ID: id, Name: "Old", Email: "old@example.com", Phone: "1"}
	}

	t.Run("email taken by another account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		mockRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(&model.User{ID: uuid.New()}, nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		_, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{Name: "New", Email: "new@example.com"})
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))
	})

	t.Run("keeps email when omitted", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		mockRepo.On("UpdateProfile", mock.Anything, id, "New", "old@example.com", "2").Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		phone := "2"
		user, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{Name: "New", Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "New", user.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("keeps phone when omitted", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		mockRepo.On("UpdateProfile", mock.Anything, id, "Old", "old@example.com", "1").Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		user, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{Email: "OLD@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "1", user.Phone)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty phone clears it", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(current(), nil)
		mockRepo.On("UpdateProfile", mock.Anything, id, "Old", "old@example.com", "").Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("k", 0), new(MockTokenStore))
		empty := ""
		user, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{Phone: &empty})
		require.NoError(t, err)
		assert.Empty(t, user.Phone)
		mockRepo.AssertExpectations(t)
	})
}
