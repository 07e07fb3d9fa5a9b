package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/middleware"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

// failingRepository fails every catalog read
type failingRepository struct {
	*repository.MemoryRepository
}

func (f *failingRepository) List(ctx context.Context, q repository.CatalogQuery) ([]recommend.CardRecord, error) {
	return nil, errors.New("connection refused")
}

type testServer struct {
	router  *gin.Engine
	repo    *repository.MemoryRepository
	metrics *metrics.Metrics
}

func testConfig(admin bool) *config.Config {
	return &config.Config{
		Environment:         "test",
		SpendCategories:     "fuel,travel,groceries,dining",
		MaxCreditScore:      900,
		RecommendationLimit: 5,
		CatalogTimeout:      time.Second,
		EnableCatalogAdmin:  admin,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, repos *repository.Repositories, extra func(*Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(logger.Nop(), m))

	deps := Dependencies{
		Config:   cfg,
		Services: services.NewServices(repos, cfg, logger.Nop(), m),
		Metrics:  m,
	}
	if extra != nil {
		extra(&deps)
	}
	require.NoError(t, SetupRoutes(router, deps))

	ts := &testServer{router: router, metrics: m}
	if memory, ok := repos.Cards.(*repository.MemoryRepository); ok {
		ts.repo = memory
	}
	return ts
}

func newMemoryServer(t *testing.T, admin bool, cards ...recommend.CardRecord) *testServer {
	repo := repository.NewMemoryRepository(cards)
	return newTestServer(t, testConfig(admin), repository.NewMemoryRepositories(repo), nil)
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// card builds a catalog entry with rates for fuel, travel, groceries and dining
func card(name string, minIncome int64, minScore recommend.Optional[int], rewardType string, rates ...int64) recommend.CardRecord {
	c := recommend.CardRecord{
		Name:           name,
		Issuer:         "Test Bank",
		MinIncome:      decimal.NewNullDecimal(d(minIncome)),
		MinCreditScore: minScore,
		RewardType:     rewardType,
		RewardRates:    map[recommend.Category]decimal.Decimal{},
		AnnualFee:      d(500),
		ApplyLink:      "https://bank.example/apply",
	}
	for i, cat := range []recommend.Category{"fuel", "travel", "groceries", "dining"} {
		if i < len(rates) {
			c.RewardRates[cat] = d(rates[i])
		}
	}
	return c
}
