package identity

import (
	"context"
	"strings"

	"github.com/rutgers-seed/proposal-portal/internal/config"
)

// User пользователь внешнего провайдера.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session вход у провайдера: его токен и пользователь.
type Session struct {
	AccessToken string
	User        User
}

// Provider внешний сервис учётных записей. Неверные данные возвращаются как
// apperror.ErrInvalidCredentials, сетевые сбои как apperror.ErrIdentityUnavailable.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*User, error)
}

// IsAdmin политика администратора: email в одном из доменов учреждения
// либо содержит подстроку "admin". Это не таблица ролей.
func IsAdmin(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if strings.Contains(email, "admin") {
		return true
	}
	for _, d := range domains {
		if strings.HasSuffix(email, "@"+strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// NewProvider выбирает провайдера по IDENTITY_PROVIDER.
func NewProvider(cfg *config.Config) Provider {
	if cfg.IdentityProvider == config.IdentityProviderSupabase {
		return NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseJWTSecret)
	}
	return NewLocalProvider(cfg.AdminUsers)
}
