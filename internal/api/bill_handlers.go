package api

import (
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/middleware"
	"github.com/Sanket3107/Rupaya/internal/service"
)

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var in service.CreateBillInput
	if err := decode(w, r, &in); err != nil {
		s.finish(w, "createBill", 0, nil, err)
		return
	}
	bill, err := s.svc.Bills.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err == nil {
		s.metrics.ObserveBill(bill.TotalAmount)
	}
	s.finish(w, "createBill", http.StatusCreated, bill, err)
}

func (s *Server) updateBill(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateBillInput
	if err := decode(w, r, &in); err != nil {
		s.finish(w, "updateBill", 0, nil, err)
		return
	}
	bill, err := s.svc.Bills.Update(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), in)
	s.finish(w, "updateBill", http.StatusOK, bill, err)
}

func (s *Server) getBillDetails(w http.ResponseWriter, r *http.Request) {
	bill, err := s.svc.Bills.GetDetails(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "getBillDetails", http.StatusOK, bill, err)
}

func (s *Server) listGroupBills(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.finish(w, "listGroupBills", 0, nil, err)
		return
	}
	bills, err := s.svc.Bills.ListForGroup(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"), r.URL.Query().Get("search"), page)
	s.finish(w, "listGroupBills", http.StatusOK, bills, err)
}

func (s *Server) listUserActivity(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.finish(w, "listUserActivity", 0, nil, err)
		return
	}
	bills, err := s.svc.Bills.ListForUser(r.Context(), middleware.GetUserID(r.Context()), page)
	s.finish(w, "listUserActivity", http.StatusOK, bills, err)
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Bills.Delete(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.noContent(w, "deleteBill", err)
}

func (s *Server) markShareAsPaid(w http.ResponseWriter, r *http.Request) {
	share, err := s.svc.Bills.MarkPaid(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "markShareAsPaid", http.StatusOK, share, err)
}

func (s *Server) markShareAsUnpaid(w http.ResponseWriter, r *http.Request) {
	share, err := s.svc.Bills.MarkUnpaid(r.Context(), middleware.GetUserID(r.Context()), pathVar(r, "id"))
	s.finish(w, "markShareAsUnpaid", http.StatusOK, share, err)
}
