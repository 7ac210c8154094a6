package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

const localTokenTTL = time.Hour

// LocalProvider учётные записи из конфигурации (email -> bcrypt хэш) для разработки
// и установок без Supabase. Токены живут в памяти процесса.
type LocalProvider struct {
	users  map[string]string
	tokens *ttlSet
}

func NewLocalProvider(users map[string]string) *LocalProvider {
	normalized := make(map[string]string, len(users))
	for email, hash := range users {
		normalized[strings.ToLower(strings.TrimSpace(email))] = hash
	}
	return &LocalProvider{users: normalized, tokens: newTTLSet()}
}

// HashPassword хэш для переменной ADMIN_USERS.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash, ok := p.users[email]
	if !ok {
		return nil, apperror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token := uuid.NewString()
	p.tokens.Add(token, email, time.Now().Add(localTokenTTL))
	return &Session{AccessToken: token, User: User{ID: email, Email: email}}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	p.tokens.Delete(accessToken)
	return nil
}

func (p *LocalProvider) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	email, ok := p.tokens.Get(accessToken)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return &User{ID: email, Email: email}, nil
}
