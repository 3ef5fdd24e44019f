package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"shop/internal/config"
	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type passthroughValidator struct{}

func (passthroughValidator) ValidateRegister(ctx context.Context, email, password string) error {
	return nil
}
func (passthroughValidator) ValidateLogin(ctx context.Context, email, password string) error {
	return nil
}

func testCfg() config.Config {
	return config.Config{JWTSecret: "test-secret", Port: "8080", GoEnv: "dev"}
}

func TestRegisterHashesPassword(t *testing.T) {
	users := new(MockUserRepository)
	uc := NewAuthUsecase(testCfg(), users, passthroughValidator{})

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		//平文は保存しない
		if u.PasswordHash == "password123" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
	})).Return(nil)

	out, err := uc.Register(context.Background(), AuthRegisterRequest{
		Email: "a@b.com", Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", out.Email)
	assert.Equal(t, "USER", out.Role)
	users.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	uc := NewAuthUsecase(testCfg(), users, passthroughValidator{})

	users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrConflict)

	_, err := uc.Register(context.Background(), AuthRegisterRequest{Email: "a@b.com", Password: "password123"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	users := new(MockUserRepository)
	uc := NewAuthUsecase(testCfg(), users, passthroughValidator{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 7, Email: "a@b.com", PasswordHash: string(hash), Role: model.RoleUser, IsActive: true,
	}, nil)

	out, err := uc.Login(context.Background(), AuthLoginRequest{Email: "a@b.com", Password: "password123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Greater(t, out.ExpiresIn, 0)
	assert.Equal(t, int64(7), out.User.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	uc := NewAuthUsecase(testCfg(), users, passthroughValidator{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 7, Email: "a@b.com", PasswordHash: string(hash), IsActive: true,
	}, nil)

	_, err := uc.Login(context.Background(), AuthLoginRequest{Email: "a@b.com", Password: "wrong"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, he.Status)
}

func TestLoginInactiveUser(t *testing.T) {
	users := new(MockUserRepository)
	uc := NewAuthUsecase(testCfg(), users, passthroughValidator{})

	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 7, Email: "a@b.com", IsActive: false,
	}, nil)

	_, err := uc.Login(context.Background(), AuthLoginRequest{Email: "a@b.com", Password: "password123"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 403, he.Status)
}
