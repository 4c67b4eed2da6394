package http

import (
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

type listResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Total    core.Money     `json:"total"`
	Count    int            `json:"count"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// handleListExpenses returns the expenses matching the optional category
// and month query parameters, newest first, with their total.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses := s.store.Filter(strings.TrimSpace(q.Get("category")), strings.TrimSpace(q.Get("month")))
	if expenses == nil {
		expenses = []core.Expense{}
	}

	resp := listResponse{Expenses: expenses, Count: len(expenses)}
	for _, e := range expenses {
		resp.Total.Cents += e.Amount.Cents
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	in, err := parseCreateExpense(r)
	if err != nil {
		logger.DebugContext(ctx, "Rejected expense input", log.FieldError, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.store.Add(ctx, in.Description, in.Amount, in.Category, in.Date)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Expense added",
			log.FieldExpenseID, e.ID,
			log.FieldAmountCents, e.Amount.Cents,
			log.FieldOperation, log.OpCreate)
		writeSuccess(w, "Expense added successfully!")
	case core.IsValidation(err):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	default:
		logger.ErrorContext(ctx, "Failed to save expense",
			log.FieldError, err,
			log.FieldOperation, log.OpCreate)
		writeError(w, http.StatusInternalServerError, "Failed to save expense")
	}
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	id := r.PathValue("id")

	err := s.store.Delete(ctx, id)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Expense deleted",
			log.FieldExpenseID, id,
			log.FieldOperation, log.OpDelete)
		writeSuccess(w, "Expense deleted successfully!")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	default:
		logger.ErrorContext(ctx, "Failed to delete expense",
			log.FieldExpenseID, id,
			log.FieldError, err,
			log.FieldOperation, log.OpDelete)
		writeError(w, http.StatusInternalServerError, "Failed to delete expense")
	}
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Statistics())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.store.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}
