package finapi

import (
	logger "log"
	"net/http"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/fincast/fincast/business/recurring"
	"github.com/jmoiron/sqlx"
)

//recurringHandler responds with recurring charge candidates detected in recent transactions
type recurringHandler struct {
	log               *logger.Logger
	db                *sqlx.DB
	calendar          bizday.Config
	defaultWindowDays int
}

//recurringHandler factory
func makeRecurringHandler(log *logger.Logger,
	db *sqlx.DB,
	calendar bizday.Config,
	defaultWindowDays int) *recurringHandler {
	return &recurringHandler{
		log:               log,
		db:                db,
		calendar:          calendar,
		defaultWindowDays: defaultWindowDays,
	}
}

//ServeHTTP implements recurringHandler's http.Handler interface
func (h *recurringHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	windowDays, err := intParam(r, "days", h.defaultWindowDays)
	if err != nil {
		http.Error(w, "unable to parse days parameter", http.StatusBadRequest)
		return
	}
	now := time.Now()
	transactions, err := ledger.GetTransactionsBetween(h.db, now.AddDate(0, 0, -windowDays), now)
	if err != nil {
		h.log.Printf("Error loading transactions for recurring detection, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	candidates := recurring.Detect(transactions, recurring.DefaultOptions(), h.calendar)
	writeJSON(h.log, w, makeJsonRecurringResponse(now, windowDays, candidates))
}

//JsonRecurringCandidate is one detected candidate with a prefilled bill when the
//detection is confident enough to suggest one
type JsonRecurringCandidate struct {
	recurring.Candidate
	SuggestedBill *ledger.Bill `json:"suggested_bill,omitempty"`
}

//JsonRecurringResponse provides json response wrapper around recurring.Candidates
type JsonRecurringResponse struct {
	AsOf       string                   `json:"as_of"`
	WindowDays int                      `json:"window_days"`
	Candidates []JsonRecurringCandidate `json:"candidates"`
}

//makeJsonRecurringResponse creates JsonRecurringResponse with suggested bills attached
func makeJsonRecurringResponse(now time.Time, windowDays int, candidates []recurring.Candidate) *JsonRecurringResponse {
	results := make([]JsonRecurringCandidate, 0)
	for _, candidate := range candidates {
		item := JsonRecurringCandidate{Candidate: candidate}
		if bill, ok := candidate.SuggestedBill(); ok {
			item.SuggestedBill = &bill
		}
		results = append(results, item)
	}
	return &JsonRecurringResponse{
		AsOf:       now.Format("2006-01-02"),
		WindowDays: windowDays,
		Candidates: results,
	}
}
