package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"margemreal/internal/domain"
	"margemreal/internal/usecase"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"
	"margemreal/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handles HTTP requests
type HTTPHandlers struct {
	analysisService *usecase.AnalysisService
	authService     *usecase.AuthService
	defaultTenant   string
	logger          *logger.Logger
	metrics         *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	analysisService *usecase.AnalysisService,
	authService *usecase.AuthService,
	defaultTenant string,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		analysisService: analysisService,
		authService:     authService,
		defaultTenant:   defaultTenant,
		logger:          logger,
		metrics:         metrics,
	}
}

// formDataRequest accepts the monetary fields either as JSON numbers or as
// pt-BR formatted strings ("1.234,56").
type formDataRequest struct {
	Vbv                 money.Amount            `json:"vbv"`
	ValoresPagosCliente money.Amount            `json:"valoresPagosCliente"`
	Vrl                 money.Amount            `json:"vrl"`
	Vrlj                money.Amount            `json:"vrlj"`
	AdditionalValues    map[string]money.Amount `json:"additionalValues"`
	Periodo             string                  `json:"periodo"`
	TenantID            string                  `json:"tenantId"`
}

func (r formDataRequest) toDomain(defaultTenant string) domain.FormData {
	additional := make(map[string]float64, len(r.AdditionalValues))
	for name, amount := range r.AdditionalValues {
		additional[name] = amount.Float64()
	}

	tenantID := r.TenantID
	if tenantID == "" {
		tenantID = defaultTenant
	}

	return domain.FormData{
		Vbv:                 r.Vbv.Float64(),
		ValoresPagosCliente: r.ValoresPagosCliente.Float64(),
		Vrl:                 r.Vrl.Float64(),
		Vrlj:                r.Vrlj.Float64(),
		AdditionalValues:    additional,
		Periodo:             r.Periodo,
		TenantID:            tenantID,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type saveAnalysisRequest struct {
	FormData  formDataRequest `json:"formData"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	UserID    string          `json:"userId"`
}

// Login runs the login simulation and stores the resulting user.
func (h *HTTPHandlers) Login(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/auth/login", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	user, err := h.authService.Login(ctx, req.Email, req.Password, req.TenantID)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingCredentials) {
			h.metrics.RecordHTTPRequest("POST", "/auth/login", "400", time.Since(start))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Missing credentials",
				"message":    err.Error(),
				"request_id": requestID,
			})
			return
		}
		h.metrics.RecordHTTPRequest("POST", "/auth/login", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Login failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/auth/login", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"request_id": requestID,
	})
}

// Logout deletes the stored session user. Saved analyses stay.
func (h *HTTPHandlers) Logout(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	if err := h.authService.Logout(ctx); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/auth/logout", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Logout failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/auth/logout", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"message":    "Sessão encerrada",
		"request_id": requestID,
	})
}

// CurrentUser returns the stored session user, if any.
func (h *HTTPHandlers) CurrentUser(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	user, ok := h.authService.CurrentUser(ctx)
	if !ok {
		h.metrics.RecordHTTPRequest("GET", "/auth/me", "404", time.Since(start))
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Not logged in",
			"message":    "Nenhum usuário autenticado",
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/auth/me", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"request_id": requestID,
	})
}

// Calculate validates the form and returns the derived KPIs with the summary
// messages. Validation failures come back as 422 with the collected errors.
func (h *HTTPHandlers) Calculate(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req formDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/metrics/calculate", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	result := h.analysisService.Calculate(ctx, req.toDomain(h.defaultTenant))
	if !result.Validation.IsValid {
		h.metrics.RecordHTTPRequest("POST", "/metrics/calculate", "422", time.Since(start))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "Validation failed",
			"validation": result.Validation,
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/metrics/calculate", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"validation": result.Validation,
		"calculated": result.Calculated,
		"messages":   result.Messages,
		"request_id": requestID,
	})
}

// GetExample returns the sample data set used to pre-fill the form.
func (h *HTTPHandlers) GetExample(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	h.metrics.RecordHTTPRequest("GET", "/metrics/example", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"formData":   usecase.ExampleFormData(h.defaultTenant),
		"request_id": requestID,
	})
}

// SaveAnalysis validates, recalculates and persists a snapshot for the
// tenant. The periodo is rebuilt from startDate/endDate.
func (h *HTTPHandlers) SaveAnalysis(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	var req saveAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/analyses", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	analysis, validation, err := h.analysisService.Save(ctx, req.FormData.toDomain(h.defaultTenant), req.StartDate, req.EndDate, req.UserID)
	if err != nil {
		h.metrics.RecordHTTPRequest("POST", "/analyses", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to save analysis")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to save analysis",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}
	if analysis == nil {
		h.metrics.RecordHTTPRequest("POST", "/analyses", "422", time.Since(start))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "Validation failed",
			"validation": validation,
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/analyses", "201", time.Since(start))
	c.JSON(http.StatusCreated, gin.H{
		"analysis":   analysis,
		"request_id": requestID,
	})
}

// ListAnalyses returns the tenant's saved analyses in storage order, with an
// optional case-sensitive periodo substring filter.
func (h *HTTPHandlers) ListAnalyses(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	var analyses []domain.AnalysisData
	if period := c.Query("period"); period != "" {
		analyses = h.analysisService.FindByPeriod(ctx, tenantID, period)
	} else {
		analyses = h.analysisService.List(ctx, tenantID)
	}

	h.metrics.RecordHTTPRequest("GET", "/analyses", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"data":       analyses,
		"total":      len(analyses),
		"request_id": requestID,
	})
}

// DeleteAnalysis removes one analysis by ID. Unknown IDs succeed unchanged.
func (h *HTTPHandlers) DeleteAnalysis(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	if err := h.analysisService.Delete(ctx, tenantID, c.Param("id")); err != nil {
		h.metrics.RecordHTTPRequest("DELETE", "/analyses/:id", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to delete analysis")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to delete analysis",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("DELETE", "/analyses/:id", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"message":    "Análise removida",
		"request_id": requestID,
	})
}

// ExportCSV streams the tenant's analyses as a semicolon-separated CSV
// attachment.
func (h *HTTPHandlers) ExportCSV(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	data, err := h.analysisService.ExportCSV(ctx, tenantID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoAnalyses) {
			h.metrics.RecordHTTPRequest("GET", "/analyses/export", "404", time.Since(start))
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "No analyses",
				"message":    err.Error(),
				"request_id": requestID,
			})
			return
		}
		h.metrics.RecordHTTPRequest("GET", "/analyses/export", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to export analyses")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Export failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/analyses/export", "200", time.Since(start))

	filename := "margem-real-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("X-Request-ID", requestID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "margem-real",
		"version":    "1.0.0",
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/health", "200", time.Since(start))
	c.JSON(http.StatusOK, health)
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	apiInfo := gin.H{
		"api_version": "v1",
		"service":     "Margem Real",
		"version":     "1.0.0",
		"description": "Calculadora de margem real para parceiros de restaurante",
		"endpoints": gin.H{
			"auth": gin.H{
				"description": "Simulated login session",
				"endpoints": gin.H{
					"login": gin.H{
						"path":        "/api/v1/auth/login",
						"methods":     []string{"POST"},
						"description": "Log in with any non-empty email and password",
					},
					"logout": gin.H{
						"path":        "/api/v1/auth/logout",
						"methods":     []string{"POST"},
						"description": "Clear the stored session user",
					},
					"me": gin.H{
						"path":        "/api/v1/auth/me",
						"methods":     []string{"GET"},
						"description": "Return the stored session user",
					},
				},
			},
			"metrics": gin.H{
				"description": "Margin calculator",
				"endpoints": gin.H{
					"calculate": gin.H{
						"path":        "/api/v1/metrics/calculate",
						"methods":     []string{"POST"},
						"description": "Validate form data and derive the KPIs",
					},
					"example": gin.H{
						"path":        "/api/v1/metrics/example",
						"methods":     []string{"GET"},
						"description": "Sample form data",
					},
				},
			},
			"analyses": gin.H{
				"description": "Saved analysis snapshots per tenant",
				"endpoints": gin.H{
					"save": gin.H{
						"path":        "/api/v1/analyses",
						"methods":     []string{"POST"},
						"description": "Validate, calculate and persist a snapshot",
					},
					"list": gin.H{
						"path":        "/api/v1/analyses",
						"methods":     []string{"GET"},
						"parameters": gin.H{
							"tenant_id": "Optional: tenant (default configured tenant)",
							"period":    "Optional: case-sensitive periodo substring filter",
						},
					},
					"delete": gin.H{
						"path":    "/api/v1/analyses/:id",
						"methods": []string{"DELETE"},
					},
					"export": gin.H{
						"path":        "/api/v1/analyses/export",
						"methods":     []string{"GET"},
						"description": "Semicolon-separated CSV of all saved analyses",
					},
				},
			},
		},
		"business_metrics": gin.H{
			"rbr":                     "Receita Bruta Real (vbv - valoresPagosCliente)",
			"rol":                     "Receita Operacional Líquida (vrl + vrlj)",
			"rentabilidadeLiquida":    "ROL / RBR × 100 (0 quando RBR ≤ 0)",
			"retencaoIfoodPercentual": "100 - rentabilidadeLiquida",
			"valorRetidoIfood":        "RBR - ROL",
		},
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/api/v1", "200", time.Since(start))
	c.JSON(http.StatusOK, apiInfo)
}
