// Package api exposes the ledger over JSON HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Sanket3107/Rupaya/internal/metrics"
	"github.com/Sanket3107/Rupaya/internal/middleware"
	"github.com/Sanket3107/Rupaya/internal/respond"
	"github.com/Sanket3107/Rupaya/internal/service"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// Services are the ledger operations the HTTP layer calls.
type Services struct {
	Auth     *service.AuthService
	Groups   *service.GroupLifecycle
	Bills    *service.BillLedger
	Balances *service.BalanceAggregator
}

// Server holds the handlers' dependencies.
type Server struct {
	svc      Services
	resolver middleware.IdentityResolver
	store    storage.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer creates a Server. m may be nil to disable metrics.
func NewServer(svc Services, resolver middleware.IdentityResolver, store storage.Store, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{svc: svc, resolver: resolver, store: store, metrics: m, logger: logger}
}

// Router builds the full route table. /health and /metrics are public, as
// are registration and login; everything else under /api needs a bearer
// token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(s.metrics))

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	public := r.PathPrefix("/api/auth").Subrouter()
	public.HandleFunc("/register", s.register).Methods(http.MethodPost)
	public.HandleFunc("/login", s.login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(s.resolver))

	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)

	api.HandleFunc("/groups", s.createGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups", s.listUserGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}", s.getGroupDetail).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}", s.updateGroup).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{id}", s.deleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{id}/members", s.addMember).Methods(http.MethodPost)
	api.HandleFunc("/groups/{id}/members/{userID}", s.updateMemberRole).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{id}/members/{userID}", s.removeMember).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{id}/balances", s.getGroupBalances).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/bills", s.listGroupBills).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/total-spent", s.getTotalSpent).Methods(http.MethodGet)

	api.HandleFunc("/bills", s.createBill).Methods(http.MethodPost)
	api.HandleFunc("/bills", s.listUserActivity).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}", s.getBillDetails).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}", s.updateBill).Methods(http.MethodPatch)
	api.HandleFunc("/bills/{id}", s.deleteBill).Methods(http.MethodDelete)

	api.HandleFunc("/shares/{id}/paid", s.markShareAsPaid).Methods(http.MethodPut)
	api.HandleFunc("/shares/{id}/paid", s.markShareAsUnpaid).Methods(http.MethodDelete)

	api.HandleFunc("/summary", s.getUserSummary).Methods(http.MethodGet)

	return r
}

// Handler is Router wrapped in the request-wide middleware.
func (s *Server) Handler(requestTimeout time.Duration) http.Handler {
	var h http.Handler = s.Router()
	h = middleware.Timeout(requestTimeout)(h)
	h = middleware.Logging(s.logger)(h)
	return middleware.CORS(h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", "error", err)
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// finish writes either err or v, and counts the operation.
func (s *Server) finish(w http.ResponseWriter, op string, status int, v any, err error) {
	s.metrics.ObserveOperation(op, err)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, status, v)
}
