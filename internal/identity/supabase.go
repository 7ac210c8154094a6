package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

// SupabaseProvider клиент GoTrue (Supabase Auth) по REST.
type SupabaseProvider struct {
	authURL    string
	anonKey    string
	jwtSecret  []byte
	httpClient *http.Client
}

// NewSupabaseProvider baseURL вида https://xyz.supabase.co. Если jwtSecret задан,
// токены доступа проверяются локально без запроса к /user.
func NewSupabaseProvider(baseURL, anonKey, jwtSecret string) *SupabaseProvider {
	p := &SupabaseProvider{
		authURL:    baseURL + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if jwtSecret != "" {
		p.jwtSecret = []byte(jwtSecret)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("identity: marshal request: %w", err)
	}

	respBody, status, err := p.request(ctx, http.MethodPost, p.authURL+"/token?grant_type=password", body, "")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, p.parseError(respBody, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "некорректный ответ сервиса авторизации")
	}
	return &Session{AccessToken: tr.AccessToken, User: tr.User}, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, accessToken string) error {
	respBody, status, err := p.request(ctx, http.MethodPost, p.authURL+"/logout", nil, accessToken)
	if err != nil {
		return err
	}
	if status >= 400 {
		return p.parseError(respBody, status)
	}
	return nil
}

func (p *SupabaseProvider) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	if p.jwtSecret != nil {
		return p.verifyLocally(accessToken)
	}

	respBody, status, err := p.request(ctx, http.MethodGet, p.authURL+"/user", nil, accessToken)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, p.parseError(respBody, status)
	}

	var u User
	if err := json.Unmarshal(respBody, &u); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "некорректный ответ сервиса авторизации")
	}
	return &u, nil
}

func (p *SupabaseProvider) verifyLocally(accessToken string) (*User, error) {
	parsed, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		return p.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, apperror.ErrUnauthorized
	}
	return &User{ID: sub, Email: email}, nil
}

func (p *SupabaseProvider) request(ctx context.Context, method, url string, body []byte, bearer string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.Entry(logrus.Fields{"url": url, "error": err.Error()}).Warn("identity: сервис авторизации недоступен")
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeUnavailable, apperror.ErrIdentityUnavailable.Message)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeUnavailable, apperror.ErrIdentityUnavailable.Message)
	}
	return respBody, resp.StatusCode, nil
}

// parseError 4xx от GoTrue считается ошибкой учётных данных, 5xx недоступностью.
func (p *SupabaseProvider) parseError(body []byte, status int) error {
	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"msg"`
	}
	_ = json.Unmarshal(body, &errResp)

	detail := errResp.ErrorDescription
	if detail == "" {
		detail = errResp.Message
	}
	if detail == "" {
		detail = errResp.Error
	}
	cause := fmt.Errorf("gotrue: status %d: %s", status, detail)

	if status >= 500 {
		return apperror.Wrap(cause, apperror.ErrCodeUnavailable, apperror.ErrIdentityUnavailable.Message)
	}
	return apperror.Wrap(cause, apperror.ErrCodeAuth, apperror.ErrInvalidCredentials.Message)
}
