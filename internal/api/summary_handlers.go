package api

import (
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/middleware"
)

// getUserSummary answers for all groups, or one when group_id is given.
func (s *Server) getUserSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Balances.UserSummary(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("group_id"))
	s.finish(w, "getUserSummary", http.StatusOK, summary, err)
}
