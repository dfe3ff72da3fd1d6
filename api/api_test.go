package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
	"yieldpilot/internal/ledger"
	"yieldpilot/internal/pilot"
	"yieldpilot/internal/queue"
	"yieldpilot/internal/repository"
	"yieldpilot/internal/service"
	"yieldpilot/internal/wrapper"
	"yieldpilot/internal/yieldsource"
)

const testSecret = "test-secret"

type apiFixture struct {
	handler    ApiHandler
	router     *gin.Engine
	token      *bank.Token
	controller *pilot.Controller
	source     *yieldsource.FixedSource
}

func newApiFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	token := bank.NewToken("USDX")
	shareLedger := ledger.NewLedger(nil)
	svc := service.NewOrchestratorService(
		shareLedger,
		repository.NewInMemoryLedgerEventRepository(),
		repository.NewInMemoryWithdrawalRequestRepository(),
		service.NewYieldStatsService(),
		nil,
	)
	svc.AddSupportedToken(token)

	controller := pilot.NewController("stable-yield", token, nil)
	source := yieldsource.NewFixedSource("fixed", token, controller.Account())
	controller.AddSource(source)
	require.NoError(t, controller.SetStrategy([]domain.StrategyEntry{
		{SourceID: source.ID(), WeightBps: domain.TotalWeightBps},
	}))
	require.NoError(t, svc.RegisterController(controller))

	q := queue.NewQueue(token, nil)
	require.NoError(t, svc.SetWithdrawalQueue(q))

	handler := ApiHandler{
		Orchestrator:    svc,
		Wrapper:         wrapper.NewWrapper(shareLedger),
		Queue:           q,
		BaseToken:       token,
		Controllers:     map[uuid.UUID]*pilot.Controller{controller.ID(): controller},
		EventRepository: repository.NewInMemoryLedgerEventRepository(),
		Stats:           service.NewYieldStatsService(),
		AdminJWTSecret:  testSecret,
	}

	return &apiFixture{
		handler:    handler,
		router:     handler.Router(),
		token:      token,
		controller: controller,
		source:     source,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestDepositAndBalanceOverHTTP(t *testing.T) {
	f := newApiFixture(t)
	holder := uuid.New()
	require.NoError(t, f.token.Mint(holder, decimal.NewFromInt(1000)))

	w := f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  f.token.ID.String(),
		Amount:   "1000",
	}, nil)
	require.Equal(t, 200, w.Code, w.Body.String())

	var resp depositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "1000", resp.Balance)

	w = f.do(t, http.MethodGet, "/balance/"+holder.String(), nil, nil)
	require.Equal(t, 200, w.Code)
	var bal balanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bal))
	require.Equal(t, "1000", bal.Balance)
	require.Equal(t, "0", bal.AssetBalance)
}

func TestDepositRejectsBadInput(t *testing.T) {
	f := newApiFixture(t)
	holder := uuid.New()

	w := f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  f.token.ID.String(),
		Amount:   "not-a-number",
	}, nil)
	require.Equal(t, 400, w.Code)

	w = f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  uuid.New().String(),
		Amount:   "100",
	}, nil)
	require.Equal(t, 400, w.Code)
}

func TestWithdrawLifecycleOverHTTP(t *testing.T) {
	f := newApiFixture(t)
	holder := uuid.New()
	require.NoError(t, f.token.Mint(holder, decimal.NewFromInt(1000)))

	w := f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  f.token.ID.String(),
		Amount:   "1000",
	}, nil)
	require.Equal(t, 200, w.Code)

	w = f.do(t, http.MethodPost, "/withdraw", withdrawRequest{
		HolderID: holder.String(),
		Amount:   "400",
	}, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var wd withdrawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wd))
	require.Equal(t, uint64(1), wd.RequestID)
	require.Equal(t, "600", wd.Balance)

	// Claiming before funding conflicts.
	w = f.do(t, http.MethodPost, "/claim", claimRequest{
		HolderID:  holder.String(),
		RequestID: wd.RequestID,
	}, nil)
	require.Equal(t, 409, w.Code)

	auth := map[string]string{"Authorization": adminToken(t, "admin")}
	w = f.do(t, http.MethodPost, "/admin/fundAvailable", nil, auth)
	require.Equal(t, 200, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/claim", claimRequest{
		HolderID:  holder.String(),
		RequestID: wd.RequestID,
	}, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var cl claimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cl))
	require.Equal(t, "400", cl.Paid)

	// History is downloadable as CSV.
	w = f.do(t, http.MethodGet, fmt.Sprintf("/requests/%s?format=csv", holder), nil, nil)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "400")
}

func TestAdminAuth(t *testing.T) {
	f := newApiFixture(t)

	w := f.do(t, http.MethodPost, "/admin/rebase", nil, nil)
	require.Equal(t, 401, w.Code)

	w = f.do(t, http.MethodPost, "/admin/rebase", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	require.Equal(t, 401, w.Code)

	w = f.do(t, http.MethodPost, "/admin/rebase", nil, map[string]string{
		"Authorization": adminToken(t, "viewer"),
	})
	require.Equal(t, 403, w.Code)

	w = f.do(t, http.MethodPost, "/admin/rebase", nil, map[string]string{
		"Authorization": adminToken(t, "admin"),
	})
	require.Equal(t, 200, w.Code, w.Body.String())
}

func TestAdminInvestDivest(t *testing.T) {
	f := newApiFixture(t)
	holder := uuid.New()
	require.NoError(t, f.token.Mint(holder, decimal.NewFromInt(1000)))

	w := f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  f.token.ID.String(),
		Amount:   "1000",
	}, nil)
	require.Equal(t, 200, w.Code, w.Body.String())

	auth := map[string]string{"Authorization": adminToken(t, "admin")}
	w = f.do(t, http.MethodPost, "/admin/divest", rebalanceRequest{
		ControllerID: f.controller.ID().String(),
		Allocations: []allocationInput{
			{SourceID: f.source.ID().String(), Amount: "300"},
		},
	}, auth)
	require.Equal(t, 200, w.Code, w.Body.String())
	require.True(t, f.source.GetBalance().Equal(decimal.NewFromInt(700)))
	require.True(t, f.token.BalanceOf(f.controller.Account()).Equal(decimal.NewFromInt(300)))

	w = f.do(t, http.MethodPost, "/admin/invest", rebalanceRequest{
		ControllerID: f.controller.ID().String(),
		Allocations: []allocationInput{
			{SourceID: f.source.ID().String(), Amount: "300"},
		},
	}, auth)
	require.Equal(t, 200, w.Code, w.Body.String())
	require.True(t, f.source.GetBalance().Equal(decimal.NewFromInt(1000)))
	require.True(t, f.token.BalanceOf(f.controller.Account()).IsZero())

	// Divesting more than the source holds conflicts.
	w = f.do(t, http.MethodPost, "/admin/divest", rebalanceRequest{
		ControllerID: f.controller.ID().String(),
		Allocations: []allocationInput{
			{SourceID: f.source.ID().String(), Amount: "5000"},
		},
	}, auth)
	require.Equal(t, 409, w.Code, w.Body.String())
}

func TestAdminRebaseReflectsYield(t *testing.T) {
	f := newApiFixture(t)
	holder := uuid.New()
	require.NoError(t, f.token.Mint(holder, decimal.NewFromInt(1000)))

	w := f.do(t, http.MethodPost, "/deposit", depositRequest{
		HolderID: holder.String(),
		TokenID:  f.token.ID.String(),
		Amount:   "1000",
	}, nil)
	require.Equal(t, 200, w.Code)

	require.NoError(t, f.source.AccrueYield(decimal.NewFromInt(100)))

	auth := map[string]string{"Authorization": adminToken(t, "admin")}
	w = f.do(t, http.MethodPost, "/admin/rebase", nil, auth)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "1100")

	w = f.do(t, http.MethodGet, "/balance/"+holder.String(), nil, nil)
	var bal balanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bal))
	require.Equal(t, "1100", bal.Balance)
}
