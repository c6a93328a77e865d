package finapi

import (
	logger "log"
	"net/http"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
)

//monthlySummaryHandler responds with spending totals by month and category
type monthlySummaryHandler struct {
	log           *logger.Logger
	db            *sqlx.DB
	defaultMonths int
}

//monthlySummaryHandler factory
func makeMonthlySummaryHandler(log *logger.Logger, db *sqlx.DB, defaultMonths int) *monthlySummaryHandler {
	return &monthlySummaryHandler{
		log:           log,
		db:            db,
		defaultMonths: defaultMonths,
	}
}

//ServeHTTP implements monthlySummaryHandler's http.Handler interface
func (h *monthlySummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", h.defaultMonths)
	if err != nil {
		http.Error(w, "unable to parse months parameter", http.StatusBadRequest)
		return
	}
	since := monthStart(time.Now().AddDate(0, -(months - 1), 0))
	summaries, err := ledger.GetMonthlySummaries(h.db, since)
	if err != nil {
		h.log.Printf("Error loading monthly summaries, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(h.log, w, &JsonMonthlySummaryResponse{
		Since:     since.Format("2006-01-02"),
		Summaries: summaries,
	})
}

//monthStart truncates a date to the first of its month
func monthStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

//JsonMonthlySummaryResponse provides json response wrapper around ledger.MonthlySummaries
type JsonMonthlySummaryResponse struct {
	Since     string                  `json:"since"`
	Summaries []ledger.MonthlySummary `json:"summaries"`
}
