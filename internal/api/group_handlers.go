package api

import (
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/middleware"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/respond"
	"github.com/Sanket3107/Rupaya/internal/service"
)

type createGroupRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"member_emails"`
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	Email string           `json:"email"`
	Role  models.GroupRole `json:"role"`
}

type updateRoleRequest struct {
	Role models.GroupRole `json:"role"`
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "createGroup", 0, nil, err)
		return
	}
	detail, err := s.svc.Groups.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description, req.MemberEmails)
	s.finish(w, "createGroup", http.StatusCreated, detail, err)
}

func (s *Server) listUserGroups(w http.ResponseWriter, r *http.Request) {
	q, err := groupListQuery(r)
	if err != nil {
		s.finish(w, "listUserGroups", 0, nil, err)
		return
	}
	page, err := s.svc.Balances.ListUserGroups(r.Context(), middleware.GetUserID(r.Context()), q)
	s.finish(w, "listUserGroups", http.StatusOK, page, err)
}

func groupListQuery(r *http.Request) (service.GroupListQuery, error) {
	query := r.URL.Query()
	filter, err := calculator.ParseGroupFilter(query.Get("filter"))
	if err != nil {
		return service.GroupListQuery{}, err
	}
	sortBy, err := calculator.ParseGroupSortKey(query.Get("sort_by"))
	if err != nil {
		return service.GroupListQuery{}, err
	}
	order, err := calculator.ParseSortOrder(query.Get("order"))
	if err != nil {
		return service.GroupListQuery{}, err
	}
	page, err := queryPage(r)
	if err != nil {
		return service.GroupListQuery{}, err
	}
	return service.GroupListQuery{
		Search: query.Get("search"),
		Filter: filter,
		SortBy: sortBy,
		Order:  order,
		Page:   page,
	}, nil
}

func (s *Server) getGroupDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Groups.GetDetail(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "getGroupDetail", http.StatusOK, detail, err)
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "updateGroup", 0, nil, err)
		return
	}
	group, err := s.svc.Groups.Update(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), req.Name, req.Description)
	s.finish(w, "updateGroup", http.StatusOK, group, err)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Groups.Delete(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.noContent(w, "deleteGroup", err)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "addMember", 0, nil, err)
		return
	}
	member, err := s.svc.Groups.AddMember(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), req.Email, req.Role)
	s.finish(w, "addMember", http.StatusCreated, member, err)
}

func (s *Server) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decode(w, r, &req); err != nil {
		s.finish(w, "updateMemberRole", 0, nil, err)
		return
	}
	member, err := s.svc.Groups.UpdateMemberRole(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), pathVar(r, "userID"), req.Role)
	s.finish(w, "updateMemberRole", http.StatusOK, member, err)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Groups.RemoveMember(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), pathVar(r, "userID"))
	s.noContent(w, "removeMember", err)
}

func (s *Server) getGroupBalances(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.svc.Balances.GroupBalances(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "getGroupBalances", http.StatusOK, sheet, err)
}

func (s *Server) getTotalSpent(w http.ResponseWriter, r *http.Request) {
	total, err := s.svc.Balances.TotalSpent(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "getTotalSpent", http.StatusOK, map[string]any{"group_id": pathVar(r, "id"), "total_spent": total}, err)
}

// noContent answers 204 on success.
func (s *Server) noContent(w http.ResponseWriter, op string, err error) {
	s.metrics.ObserveOperation(op, err)
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
