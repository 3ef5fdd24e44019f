package validator

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	repo "shop/internal/repository"
	"shop/internal/usecase"
)

type authValidator struct {
	users repo.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repo.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	// email形式
	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return usecase.NewHTTPError(http.StatusConflict, "email already used")
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
