package finapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"strconv"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//upcomingBillHandler responds with the active bills coming due inside a horizon
type upcomingBillHandler struct {
	log                *logger.Logger
	db                 *sqlx.DB
	calendar           bizday.Config
	defaultHorizonDays int
}

//upcomingBillHandler factory
func makeUpcomingBillHandler(log *logger.Logger,
	db *sqlx.DB,
	calendar bizday.Config,
	defaultHorizonDays int) *upcomingBillHandler {
	return &upcomingBillHandler{
		log:                log,
		db:                 db,
		calendar:           calendar,
		defaultHorizonDays: defaultHorizonDays,
	}
}

//ServeHTTP implements upcomingBillHandler's http.Handler interface
func (h *upcomingBillHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	horizonDays, err := intParam(r, "days", h.defaultHorizonDays)
	if err != nil {
		http.Error(w, "unable to parse days parameter", http.StatusBadRequest)
		return
	}
	bills, err := ledger.GetActiveBills(h.db)
	if err != nil {
		h.log.Printf("Error loading active bills, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	now := time.Now()
	writeJSON(h.log, w, &JsonUpcomingBillResponse{
		AsOf:        now.Format("2006-01-02"),
		HorizonDays: horizonDays,
		Bills:       ledger.UpcomingBills(bills, now, horizonDays, h.calendar),
	})
}

//JsonUpcomingBillResponse provides json response wrapper around ledger.UpcomingBills
type JsonUpcomingBillResponse struct {
	AsOf        string                `json:"as_of"`
	HorizonDays int                   `json:"horizon_days"`
	Bills       []ledger.UpcomingBill `json:"bills"`
}

//billCreateHandler records a new bill, entered by hand or promoted from a recurring
//charge candidate
type billCreateHandler struct {
	log      *logger.Logger
	db       *sqlx.DB
	calendar bizday.Config
}

//billCreateHandler factory
func makeBillCreateHandler(log *logger.Logger, db *sqlx.DB, calendar bizday.Config) *billCreateHandler {
	return &billCreateHandler{
		log:      log,
		db:       db,
		calendar: calendar,
	}
}

//billRequest is the expected body of a bill create post
type billRequest struct {
	AccountId      *int64          `json:"account_id"`
	Name           string          `json:"name"`
	Merchant       string          `json:"merchant"`
	Amount         decimal.Decimal `json:"amount"`
	DueDay         int             `json:"due_day"`
	IntervalMonths int             `json:"interval_months"`
	FirstDueOn     string          `json:"first_due_on"`
	LeadDays       int             `json:"lead_days"`
	AutoPay        bool            `json:"auto_pay"`
	AutoDetected   bool            `json:"auto_detected"`
}

//ServeHTTP implements billCreateHandler's http.Handler interface
func (h *billCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var request billRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		http.Error(w, "unable to parse bill body", http.StatusBadRequest)
		return
	}
	bill, err := buildBill(request)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := time.Now()
	bill.CreatedAt = now
	err = transact(h.log, h.db, func(tx *sqlx.Tx) error {
		return ledger.SaveBill(tx, bill)
	})
	if err != nil {
		h.log.Printf("Error saving bill %s, error:%v", bill.Name, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	h.log.Printf("Saved bill %s as id:%d", bill.Name, bill.Id)
	writeJSONStatus(h.log, w, http.StatusCreated, upcomingBill(bill, now, h.calendar))
}

//buildBill creates a ledger.Bill from a bill create request
func buildBill(request billRequest) (*ledger.Bill, error) {
	if request.Name == "" {
		return nil, errors.New("missing name")
	}
	if request.Merchant == "" {
		return nil, errors.New("missing merchant")
	}
	if request.Amount.IsNegative() {
		return nil, errors.New("bill amount cannot be negative")
	}
	if request.DueDay < 1 || request.DueDay > 31 {
		return nil, fmt.Errorf("due_day %d is not a day of the month", request.DueDay)
	}
	intervalMonths := request.IntervalMonths
	if intervalMonths < 1 {
		intervalMonths = 1
	}
	var firstDueOn time.Time
	if request.FirstDueOn != "" {
		var err error
		firstDueOn, err = time.Parse("2006-01-02", request.FirstDueOn)
		if err != nil {
			return nil, fmt.Errorf("unable to parse first_due_on %s", request.FirstDueOn)
		}
	}
	return &ledger.Bill{
		AccountId:      request.AccountId,
		Name:           request.Name,
		Merchant:       request.Merchant,
		Amount:         request.Amount,
		DueDay:         request.DueDay,
		IntervalMonths: intervalMonths,
		FirstDueOn:     firstDueOn,
		LeadDays:       request.LeadDays,
		AutoPay:        request.AutoPay,
		AutoDetected:   request.AutoDetected,
		Active:         true,
	}, nil
}

//billDetailHandler responds with one bill and its next due and reminder dates
type billDetailHandler struct {
	log      *logger.Logger
	db       *sqlx.DB
	calendar bizday.Config
}

//billDetailHandler factory
func makeBillDetailHandler(log *logger.Logger, db *sqlx.DB, calendar bizday.Config) *billDetailHandler {
	return &billDetailHandler{
		log:      log,
		db:       db,
		calendar: calendar,
	}
}

//ServeHTTP implements billDetailHandler's http.Handler interface
func (h *billDetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	billId, err := strconv.ParseInt(mux.Vars(r)["billId"], 10, 64)
	if err != nil {
		http.Error(w, "unable to parse billId", http.StatusBadRequest)
		return
	}
	bill, err := ledger.GetBill(h.db, billId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "no bill with that id", http.StatusNotFound)
			return
		}
		h.log.Printf("Error loading bill id:%d, error:%v", billId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(h.log, w, upcomingBill(bill, time.Now(), h.calendar))
}

//upcomingBill pairs a bill with its next due and reminder dates as of a date
func upcomingBill(bill *ledger.Bill, asOf time.Time, calendar bizday.Config) *ledger.UpcomingBill {
	due := bill.NextDueDate(asOf, calendar)
	return &ledger.UpcomingBill{
		Bill:             *bill,
		DueOn:            due,
		RemindOn:         bill.RemindOn(due, calendar),
		BusinessDaysLeft: bizday.BusinessDaysBetween(asOf, due, calendar),
	}
}
