package api

import (
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/auth"
	"github.com/Sanket3107/Rupaya/internal/middleware"
	"github.com/Sanket3107/Rupaya/internal/respond"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "register", 0, nil, err)
		return
	}
	session, err := s.svc.Auth.Register(r.Context(), req.Email, req.Name, req.Password)
	s.finish(w, "register", http.StatusCreated, session, err)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "login", 0, nil, err)
		return
	}
	session, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	s.finish(w, "login", http.StatusOK, session, err)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err == nil {
		err = s.svc.Auth.Logout(r.Context(), token)
	}
	s.metrics.ObserveOperation("logout", err)
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Auth.CurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	s.finish(w, "currentUser", http.StatusOK, user, err)
}
