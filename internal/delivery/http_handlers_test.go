package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"margemreal/internal/infrastructure"
	"margemreal/internal/usecase"
	"margemreal/pkg/config"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Collectors register in the default registry, so the whole test binary
// shares one Metrics instance.
var testMetrics = metrics.New()

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("error")
	store := infrastructure.NewMemoryStore()
	analysisRepo := infrastructure.NewAnalysisRepository(store, log)
	userRepo := infrastructure.NewUserRepository(store, log)

	analysisService := usecase.NewAnalysisService(analysisRepo, log, testMetrics)
	authService := usecase.NewAuthService(userRepo, "demo-tenant", 0, log, testMetrics)

	handlers := NewHTTPHandlers(analysisService, authService, "demo-tenant", log, testMetrics)

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			RequestTimeout:     5 * time.Second,
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
		},
	}

	return NewHTTPRouter(handlers, cfg, log, testMetrics).SetupRoutes()
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["request_id"])
}

func TestGetAPIInfo(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "v1", body["api_version"])
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login",
			`{"email":"maria@restaurante.com","password":"qualquer"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			User struct {
				Name     string `json:"name"`
				TenantID string `json:"tenantId"`
				Role     string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "maria", body.User.Name)
		assert.Equal(t, "demo-tenant", body.User.TenantID)
		assert.Equal(t, "owner", body.User.Role)
	})

	t.Run("missing password", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login",
			`{"email":"maria@restaurante.com","password":""}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"joao@loja.com","password":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculate(t *testing.T) {
	t.Run("numeric amounts", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/metrics/calculate",
			`{"vbv":100000,"valoresPagosCliente":4000,"vrl":70000,"vrlj":5000}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Calculated struct {
				Rbr float64 `json:"rbr"`
				Rol float64 `json:"rol"`
			} `json:"calculated"`
			Messages []string `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 96000.0, body.Calculated.Rbr)
		assert.Equal(t, 75000.0, body.Calculated.Rol)
		assert.Len(t, body.Messages, 4)
	})

	t.Run("pt-BR string amounts", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/metrics/calculate",
			`{"vbv":"100.000,00","valoresPagosCliente":"4.000,00","vrl":"70.000,00","vrlj":"5.000,00"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Calculated struct {
				Rbr float64 `json:"rbr"`
			} `json:"calculated"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 96000.0, body.Calculated.Rbr)
	})

	t.Run("invalid form", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/metrics/calculate", `{"vbv":0}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body struct {
			Validation struct {
				IsValid bool `json:"isValid"`
				Errors  []struct {
					Field string `json:"field"`
				} `json:"errors"`
			} `json:"validation"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Validation.IsValid)
		assert.NotEmpty(t, body.Validation.Errors)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/metrics/calculate", `{not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("detailed breakdown", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/metrics/calculate",
			`{"vbv":100000,"valoresPagosCliente":4000,"vrl":70000,"vrlj":5000,
			  "additionalValues":{"promocoes":2500,"taxasComissoes":1200,"servicosLogisticos":800,"outrosValores":300}}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Calculated struct {
				DetailedAnalysis *struct {
					DebitosDetalhados float64 `json:"debitosDetalhados"`
					RbrPosDebitos     float64 `json:"rbrPosDebitos"`
				} `json:"detailedAnalysis"`
			} `json:"calculated"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Calculated.DetailedAnalysis)
		assert.Equal(t, 4800.0, body.Calculated.DetailedAnalysis.DebitosDetalhados)
		assert.Equal(t, 91200.0, body.Calculated.DetailedAnalysis.RbrPosDebitos)
	})
}

func TestGetExample(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/metrics/example", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		FormData struct {
			Vbv      float64 `json:"vbv"`
			TenantID string  `json:"tenantId"`
		} `json:"formData"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 100000.0, body.FormData.Vbv)
	assert.Equal(t, "demo-tenant", body.FormData.TenantID)
}

const saveBody = `{
	"formData": {"vbv":100000,"valoresPagosCliente":4000,"vrl":70000,"vrlj":5000},
	"startDate": "2025-01-01",
	"endDate": "2025-01-31",
	"userId": "user-1"
}`

func TestSaveAndListAnalyses(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyses", saveBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Analysis struct {
			ID       string `json:"id"`
			FormData struct {
				Periodo string `json:"periodo"`
			} `json:"formData"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Analysis.ID)
	assert.Equal(t, "2025-01-01 até 2025-01-31", created.Analysis.FormData.Periodo)

	w = doJSON(router, http.MethodGet, "/api/v1/analyses", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Len(t, list.Data, 1)
}

func TestSaveAnalysisValidationFailure(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyses",
		`{"formData":{"vbv":0},"startDate":"2025-01-01","endDate":"2025-01-31"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/analyses", "")
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Zero(t, list.Total)
}

func TestListAnalysesPeriodFilter(t *testing.T) {
	router := setupTestRouter(t)

	require.Equal(t, http.StatusCreated,
		doJSON(router, http.MethodPost, "/api/v1/analyses", saveBody).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(router, http.MethodPost, "/api/v1/analyses",
			strings.ReplaceAll(saveBody, "2025-01", "2025-02")).Code)

	w := doJSON(router, http.MethodGet, "/api/v1/analyses?period=2025-02", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestDeleteAnalysis(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyses", saveBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Analysis struct {
			ID string `json:"id"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(router, http.MethodDelete, "/api/v1/analyses/"+created.Analysis.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/analyses", "")
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Zero(t, list.Total)

	// Idempotent: unknown IDs still succeed.
	w = doJSON(router, http.MethodDelete, "/api/v1/analyses/"+created.Analysis.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportCSV(t *testing.T) {
	t.Run("no analyses", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(router, http.MethodGet, "/api/v1/analyses/export", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("exports saved analyses", func(t *testing.T) {
		router := setupTestRouter(t)

		require.Equal(t, http.StatusCreated,
			doJSON(router, http.MethodPost, "/api/v1/analyses", saveBody).Code)

		w := doJSON(router, http.MethodGet, "/api/v1/analyses/export", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "periodo;vbv;"))
		assert.True(t, strings.HasPrefix(lines[1], "2025-01-01 até 2025-01-31;100000;"))
	})
}
