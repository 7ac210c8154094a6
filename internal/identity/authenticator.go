package identity

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/metrics"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

// Authenticator вход администратора: проверка у провайдера, политика IsAdmin,
// затем собственная сессия. Сессия провайдера после входа не нужна и закрывается.
type Authenticator struct {
	provider Provider
	sessions *SessionManager
	domains  []string
}

func NewAuthenticator(provider Provider, sessions *SessionManager, domains []string) *Authenticator {
	return &Authenticator{provider: provider, sessions: sessions, domains: domains}
}

// Login входит по email и паролю. Пользователь без прав администратора
// сразу разлогинивается у провайдера и получает ErrNotAdmin.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*AdminSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.RecordAdminLogin("invalid")
		return nil, apperror.ErrInvalidCredentials
	}

	session, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		metrics.RecordAdminLogin(loginResult(err))
		return nil, err
	}
	return a.admit(ctx, session.AccessToken, &session.User)
}

// Exchange принимает токен, уже полученный клиентом у провайдера.
func (a *Authenticator) Exchange(ctx context.Context, providerToken string) (*AdminSession, error) {
	user, err := a.provider.CurrentUser(ctx, providerToken)
	if err != nil {
		metrics.RecordAdminLogin(loginResult(err))
		return nil, err
	}
	return a.admit(ctx, providerToken, user)
}

func (a *Authenticator) admit(ctx context.Context, providerToken string, user *User) (*AdminSession, error) {
	defer a.signOut(ctx, providerToken)

	if !IsAdmin(user.Email, a.domains) {
		metrics.RecordAdminLogin("forbidden")
		logger.Entry(logrus.Fields{"email": user.Email}).Warn("identity: вход без прав администратора")
		return nil, apperror.ErrNotAdmin
	}

	s, err := a.sessions.Issue(user.Email)
	if err != nil {
		metrics.RecordAdminLogin("error")
		return nil, err
	}
	metrics.RecordAdminLogin("success")
	logger.Entry(logrus.Fields{"email": user.Email}).Info("identity: администратор вошёл")
	return s, nil
}

// Verify проверяет токен сессии.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	return a.sessions.Parse(token)
}

// Logout отзывает токен сессии.
func (a *Authenticator) Logout(token string) {
	a.sessions.Revoke(token)
}

func (a *Authenticator) signOut(ctx context.Context, providerToken string) {
	if providerToken == "" {
		return
	}
	if err := a.provider.SignOut(ctx, providerToken); err != nil {
		logger.Entry(logrus.Fields{"error": err.Error()}).Warn("identity: не удалось закрыть сессию провайдера")
	}
}

func loginResult(err error) string {
	switch {
	case apperror.IsAuth(err):
		return "invalid"
	default:
		return "error"
	}
}
