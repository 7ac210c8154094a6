package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

const sessionIssuer = "proposal-portal"

// AdminSession подписанный токен администратора, заменяет булев флаг в хранилище клиента.
type AdminSession struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims разобранный токен сессии.
type Claims struct {
	Email     string
	ID        string
	ExpiresAt time.Time
}

// SessionManager выпускает и проверяет короткоживущие токены сессии (HS256).
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked *ttlSet
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: newTTLSet(),
		now:     time.Now,
	}
}

// Issue выпускает токен для email с уникальным jti.
func (m *SessionManager) Issue(email string) (*AdminSession, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	claims := jwt.MapClaims{
		"sub": email,
		"jti": uuid.NewString(),
		"iss": sessionIssuer,
		"adm": true,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить сессию")
	}
	return &AdminSession{Token: token, Email: email, ExpiresAt: time.Unix(exp.Unix(), 0)}, nil
}

// Parse проверяет подпись, срок и отзыв токена.
func (m *SessionManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "сессия истекла")
		}
		return nil, apperror.ErrUnauthorized
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	email, _ := mc["sub"].(string)
	jti, _ := mc["jti"].(string)
	adm, _ := mc["adm"].(bool)
	if email == "" || jti == "" || !adm {
		return nil, apperror.ErrUnauthorized
	}
	if m.revoked.Has(jti) {
		return nil, apperror.ErrUnauthorized
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, apperror.ErrUnauthorized
	}
	return &Claims{Email: email, ID: jti, ExpiresAt: exp.Time}, nil
}

// Revoke отзывает токен до конца его срока. Невалидный токен игнорируется.
func (m *SessionManager) Revoke(token string) {
	claims, err := m.Parse(token)
	if err != nil {
		return
	}
	m.revoked.Add(claims.ID, claims.Email, claims.ExpiresAt)
}
