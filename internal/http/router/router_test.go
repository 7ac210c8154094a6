package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rutgers-seed/proposal-portal/internal/config"
	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/handler"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
	"github.com/rutgers-seed/proposal-portal/internal/ws"
)

type memoryRepo struct {
	mu     sync.Mutex
	rows   map[int64]*entity.Proposal
	nextID int64
}

func (m *memoryRepo) Insert(ctx context.Context, r *entity.Record) (*entity.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := r.ToProposal()
	if err != nil {
		return nil, err
	}
	m.nextID++
	p.ID = m.nextID
	p.SubmittedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	m.rows[p.ID] = p
	return p, nil
}

func (m *memoryRepo) List(ctx context.Context) ([]*entity.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Proposal, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memoryRepo) FindByID(ctx context.Context, id int64) (*entity.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrProposalNotFound
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperror.ErrProposalNotFound
	}
	delete(m.rows, id)
	return nil
}

type okPinger struct{ err error }

func (p okPinger) PingContext(ctx context.Context) error { return p.err }

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", RateLimitLimit: 100, RateLimitPeriod: time.Minute}
	repo := &memoryRepo{rows: make(map[int64]*entity.Proposal)}
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	sessions := identity.NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour)
	auth := identity.NewAuthenticator(
		identity.NewLocalProvider(map[string]string{"chair@rutgers.edu": string(hash), "guest@gmail.com": string(hash)}),
		sessions,
		validation.DefaultInstitutionDomains,
	)

	h := Handlers{
		Proposal: handler.NewProposalHandler(proposal.NewSubmitProposalUseCase(validation.NewValidator(nil), repo, hub)),
		Admin: handler.NewAdminHandler(
			auth,
			proposal.NewSearchProposalsUseCase(repo),
			proposal.NewGetProposalUseCase(repo),
			proposal.NewDeleteProposalUseCase(repo, hub),
			proposal.NewGetStatisticsUseCase(repo),
			"seed-proposals-admin-export",
		),
		Health: handler.NewHealthHandler(okPinger{}),
		WS:     handler.NewWSHandler(hub, nil),
	}
	return SetupRouter(cfg, h, auth)
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validDraft(name string) *entity.ProposalDraft {
	return &entity.ProposalDraft{
		Leads:            []entity.Lead{{Name: name, Email: "a@rutgers.edu", Phone: "123"}},
		ProblemStatement: entity.ProblemStatement{EnvironmentalIssue: "i", WhyItMatters: "w", PastAttempts: "p", EvidenceAndLessons: "e"},
		Goal:             entity.Goal{OverarchingAim: "a", HowItAddressesProblem: "h", Approach: "ap", ExpectedLearning: "l"},
		Objectives:       []string{"x"},
		Timeline:         []entity.TimelineItem{{Task: "t", Deliverable: "d", StartDate: "2025-01-01", EndDate: "2025-03-01"}},
		ExpectedExpenses: []entity.ExpenseItem{{Item: "i", Purpose: "p", Cost: "$1,200.50"}},
		ExpectedOutcomes: entity.ExpectedOutcomes{Accomplishments: "a", FinalDeliverable: "f", ContributionToSEED: "c"},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "chair@rutgers.edu", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &s))
	return s.Token
}

func TestSubmitProposal(t *testing.T) {
	r := setup(t)

	w := do(r, http.MethodPost, "/api/proposals", "", validDraft("Jane Doe"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID                   int64  `json:"id"`
		FormattedTotalBudget string `json:"formattedTotalBudget"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "$1,200.5", created.FormattedTotalBudget)

	bad := validDraft("")
	bad.Leads[0].Email = "a@gmail.com"
	w = do(r, http.MethodPost, "/api/proposals", "", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, string(apperror.ErrCodeValidation), env.Error.Code)
	assert.Contains(t, env.Error.Fields, "leads.0.name")
	assert.Contains(t, env.Error.Fields, "leads.0.email")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/proposals", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminFlow(t *testing.T) {
	r := setup(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/proposals", "", validDraft("Jane Doe")).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/proposals", "", validDraft("Bob")).Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/admin/proposals", "", nil).Code)

	token := login(t, r)

	w := do(r, http.MethodGet, "/api/admin/proposals?search=jane", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, int64(1), list.Items[0].ID)

	w = do(r, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Total       int     `json:"total"`
		Recent      int     `json:"recent"`
		TotalBudget float64 `json:"totalBudget"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Recent)
	assert.InDelta(t, 2401.0, stats.TotalBudget, 1e-9)

	w = do(r, http.MethodGet, "/api/admin/export?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "=== SUMMARY ===")

	w = do(r, http.MethodGet, "/api/admin/proposals/2/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seed-proposal-2-")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/admin/proposals/abc", token, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/admin/proposals/2", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/admin/proposals/2", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/api/admin/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/admin/proposals", token, nil).Code)
}

func TestAdminLogin_NonAdminForbidden(t *testing.T) {
	r := setup(t)

	w := do(r, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "guest@gmail.com", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperror.ErrCodeAuth), decode(t, w).Error.Code)

	w = do(r, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "chair@rutgers.edu", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	r := setup(t)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "", nil).Code)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", handler.NewHealthHandler(okPinger{err: errors.New("dial tcp: refused")}).Health)

	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}
