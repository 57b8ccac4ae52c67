package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/identity"
	"fintrack/internal/insights"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// Wire shapes. Amounts travel as fixed two-decimal strings, dates as
// 2006-01-02, months as 2006-01.
type transactionResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Reserved    bool   `json:"reserved"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type createTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Reserved    bool   `json:"reserved"`
}

type trendPointResponse struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type summaryResponse struct {
	Month             string                   `json:"month"`
	TotalIncome       string                   `json:"total_income"`
	TotalExpense      string                   `json:"total_expense"`
	Balance           string                   `json:"balance"`
	ReservedBalance   string                   `json:"reserved_balance"`
	DailyTrend        []trendPointResponse     `json:"daily_trend"`
	CategoryBreakdown []categoryAmountResponse `json:"category_breakdown"`
}

type warningResponse struct {
	Category string `json:"category"`
	Percent  string `json:"percent"`
}

type insightsResponse struct {
	SavingsRate    string            `json:"savings_rate"`
	HealthScore    int               `json:"health_score"`
	MonthOverMonth string            `json:"month_over_month"`
	Warnings       []warningResponse `json:"warnings"`
	Suggestions    []string          `json:"suggestions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      core.FormatAmount(t.Amount),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
		Reserved:    t.Reserved,
		Status:      string(t.Status),
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func toSummaryResponse(s services.Summary) summaryResponse {
	resp := summaryResponse{
		Month:             s.Month.String(),
		TotalIncome:       core.FormatAmount(s.TotalIncome),
		TotalExpense:      core.FormatAmount(s.TotalExpense),
		Balance:           core.FormatAmount(s.Balance),
		ReservedBalance:   core.FormatAmount(s.ReservedBalance),
		DailyTrend:        make([]trendPointResponse, 0, len(s.DailyTrend)),
		CategoryBreakdown: make([]categoryAmountResponse, 0, len(s.CategoryBreakdown)),
	}
	for _, p := range s.DailyTrend {
		resp.DailyTrend = append(resp.DailyTrend, trendPointResponse{
			Date:    p.Date.String(),
			Income:  core.FormatAmount(p.Income),
			Expense: core.FormatAmount(p.Expense),
		})
	}
	for _, c := range s.CategoryBreakdown {
		resp.CategoryBreakdown = append(resp.CategoryBreakdown, categoryAmountResponse{
			Category: c.Category,
			Total:    core.FormatAmount(c.Total),
		})
	}
	return resp
}

func toInsightsResponse(in insights.Insights) insightsResponse {
	resp := insightsResponse{
		SavingsRate:    core.FormatAmount(in.SavingsRate),
		HealthScore:    in.HealthScore,
		MonthOverMonth: in.MonthOverMonth,
		Warnings:       make([]warningResponse, 0, len(in.Warnings)),
		Suggestions:    in.Suggestions,
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	for _, w := range in.Warnings {
		resp.Warnings = append(resp.Warnings, warningResponse{
			Category: w.Category,
			Percent:  core.FormatAmount(w.Percent),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, identity.ErrNoOwner):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) ownerID(r *http.Request) (int64, error) {
	return s.resolver.OwnerID(r)
}

// monthParam reads the month query parameter. When absent and
// allowEmpty is set, ok is false and the caller decides the fallback.
func monthParam(r *http.Request, allowEmpty bool) (core.Month, bool, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		if allowEmpty {
			return core.Month{}, false, nil
		}
		return core.Month{}, false, fmt.Errorf("%w: month query parameter is required", core.ErrInvalidMonth)
	}
	m, err := core.ParseMonth(raw)
	if err != nil {
		return core.Month{}, false, err
	}
	return m, true, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid transaction id", core.ErrInvalidArgument)
	}
	return id, nil
}

func (s *Server) summaryCacheKey(ownerID int64, month core.Month) string {
	return strconv.FormatInt(ownerID, 10) + ":" + month.String()
}

// invalidateOwner drops every cached view of the owner after a
// mutation. Transitions change history months too, so the whole prefix
// goes.
func (s *Server) invalidateOwner(ownerID int64) {
	s.summaryCache.DeletePrefix(strconv.FormatInt(ownerID, 10) + ":")
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	t, err := s.ledger.Create(r.Context(), owner, services.CreateTransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		Reserved:    req.Reserved,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, _, err := monthParam(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	set, err := s.ledger.ListByMonth(r.Context(), owner, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]transactionResponse, 0, len(set))
	for _, t := range set {
		resp = append(resp, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReserved(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, ok, err := monthParam(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var filter *core.Month
	if ok {
		filter = &month
	}

	set, err := s.ledger.ListReserved(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]transactionResponse, 0, len(set))
	for _, t := range set {
		resp = append(resp, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.ledger.Complete(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleRevertTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.ledger.Revert(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, _, err := monthParam(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := s.summaryCacheKey(owner, month)
	if cached, found := s.summaryCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Summary cache hit", "owner_id", owner, "month", month.String())
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	summary, err := s.dashboard.Summary(r.Context(), owner, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, _, err := monthParam(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, err := s.insights.Insights(r.Context(), owner, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInsightsResponse(in))
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, _, err := monthParam(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	export, err := s.reports.Export(r.Context(), owner, month, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
