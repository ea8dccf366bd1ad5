package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"divvy/internal/core"
)

type expensePayload struct {
	Title     string   `json:"title"`
	Amount    string   `json:"amount"`
	PaidBy    string   `json:"paid_by"`
	SplitWith []string `json:"split_with"`
}

type expenseResponse struct {
	Index     int      `json:"index"`
	Title     string   `json:"title"`
	Amount    string   `json:"amount"`
	Cents     int64    `json:"amount_cents"`
	PaidBy    string   `json:"paid_by"`
	SplitWith []string `json:"split_with"`
}

type obligationResponse struct {
	Owes       string `json:"owes"`
	OwedTo     string `json:"owed_to"`
	Amount     string `json:"amount"`
	Cents      int64  `json:"amount_cents"`
	ForExpense string `json:"for_expense"`
}

type totalResponse struct {
	Group string `json:"group"`
	Total string `json:"total"`
	Cents int64  `json:"total_cents"`
}

func toExpenseResponse(index int, e core.Expense) expenseResponse {
	split := make([]string, len(e.SplitWith))
	for i, m := range e.SplitWith {
		split[i] = string(m)
	}
	return expenseResponse{
		Index:     index,
		Title:     e.Title,
		Amount:    e.Amount.String(),
		Cents:     e.Amount.Cents,
		PaidBy:    string(e.PaidBy),
		SplitWith: split,
	}
}

var errBadJSON = errors.New("invalid JSON body")

// decodeExpense parses the request body into a core expense. Amounts arrive
// as decimal strings and are converted to cents at this boundary.
func decodeExpense(r *http.Request) (core.Expense, error) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return core.Expense{}, errBadJSON
	}
	cents, err := core.ParseDecimalToCents(payload.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	split := make([]core.Member, len(payload.SplitWith))
	for i, m := range payload.SplitWith {
		split[i] = core.Member(m)
	}
	return core.Expense{
		Title:     payload.Title,
		Amount:    core.Money{Cents: cents},
		PaidBy:    core.Member(payload.PaidBy),
		SplitWith: split,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")

	// A missing group is a 404; an existing group with no expenses is an
	// empty list.
	if _, err := s.ledger.Group(title); err != nil {
		writeError(w, err)
		return
	}
	expenses := s.ledger.Expenses(title)
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(i, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")

	exp, err := decodeExpense(r)
	if errors.Is(err, errBadJSON) {
		http.Error(w, errBadJSON.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	added, err := s.ledger.AddExpense(r.Context(), title, exp)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateGroup(title)
	writeJSON(w, http.StatusCreated, toExpenseResponse(len(s.ledger.Expenses(title))-1, added))
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid expense index", http.StatusBadRequest)
		return
	}

	exp, err := decodeExpense(r)
	if errors.Is(err, errBadJSON) {
		http.Error(w, errBadJSON.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.ledger.EditExpense(r.Context(), title, index, exp)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateGroup(title)
	writeJSON(w, http.StatusOK, toExpenseResponse(index, updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid expense index", http.StatusBadRequest)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), title, index); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateGroup(title)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOwesList(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")

	obligations, ok := s.owesCache.Get(title)
	if !ok {
		var err error
		obligations, err = s.ledger.OwesList(title)
		if err != nil {
			writeError(w, err)
			return
		}
		s.owesCache.Set(title, obligations)
	}

	out := make([]obligationResponse, len(obligations))
	for i, o := range obligations {
		out[i] = obligationResponse{
			Owes:       string(o.Owes),
			OwedTo:     string(o.OwedTo),
			Amount:     o.Amount.String(),
			Cents:      o.Amount.Cents,
			ForExpense: o.ForExpense,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGroupTotal(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")

	total, ok := s.totalCache.Get(title)
	if !ok {
		var err error
		total, err = s.ledger.GroupTotal(title)
		if err != nil {
			writeError(w, err)
			return
		}
		s.totalCache.Set(title, total)
	}

	writeJSON(w, http.StatusOK, totalResponse{
		Group: title,
		Total: total.String(),
		Cents: total.Cents,
	})
}
