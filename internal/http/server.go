package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
)

// Services bundles the application services the API exposes.
type Services struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Reports    *services.ReportService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	Logger             *applog.Logger
	TrustedProxies     []string
}

type Server struct {
	http.Server
	svc     Services
	store   Pinger
	logger  *applog.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc Services, store Pinger) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	clients := security.NewClientResolver()
	for _, cidr := range cfg.TrustedProxies {
		if err := clients.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		svc:     svc,
		store:   store,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(logger.WithComponent(applog.ComponentTrace), clients.ClientIP),
	}

	var h http.Handler = s.routes()
	h = s.limiter.Middleware(clients.ClientIP, s.onRateLimited)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = applog.Middleware(logger, trace.RequestIDFromRequest)(h)
	h = s.tracer.Handler(h)
	s.Handler = h

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)
	mux.HandleFunc("GET /api/users/exists/email/{email}", s.handleEmailExists)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("GET /api/categories/exists/name/{name}", s.handleCategoryNameExists)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /api/expenses/create", s.handleCreateExpenseParams)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/user/{userId}", s.handleExpensesByUser)
	mux.HandleFunc("GET /api/expenses/category/{categoryId}", s.handleExpensesByCategory)
	mux.HandleFunc("GET /api/expenses/summary/{userId}/{year}/{month}", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/expenses/total/{userId}/{year}/{month}", s.handleMonthlyTotal)
	mux.HandleFunc("GET /api/expenses/monthly/{userId}/{year}/{month}", s.handleMonthlyExpenses)
	mux.HandleFunc("GET /api/expenses/overview/{userId}/{year}/{month}", s.handleMonthOverview)

	mux.HandleFunc("POST /api/reports/export/{userId}/{year}/{month}", s.handleExportReport)

	return mux
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown stops the limiter, gracefully shuts down the HTTP server and
// logs the request counters.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		m := s.tracer.Metrics()
		s.logger.InfoContext(ctx, "HTTP server stopped",
			applog.FieldRequests, m.TotalRequests,
			applog.FieldRateLimited, s.limiter.Rejected())
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		ServiceUnavailableError("storage unavailable").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
