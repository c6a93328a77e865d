package ledger

import (
	"sort"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Bill is a recurring obligation tracked for reminders. DueDay is the day of the month
// the bill is due, clamped to the month length for short months. IntervalMonths is 1
// for a monthly bill, 3 for quarterly and so on, stepped from the month of FirstDueOn.
type Bill struct {
	Id             int64           `db:"id" json:"id"`
	AccountId      *int64          `db:"account_id" json:"account_id"`
	Name           string          `db:"name" json:"name"`
	Merchant       string          `db:"merchant" json:"merchant"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	DueDay         int             `db:"due_day" json:"due_day"`
	IntervalMonths int             `db:"interval_months" json:"interval_months"`
	FirstDueOn     time.Time       `db:"first_due_on" json:"first_due_on"`
	// LeadDays is how many business days ahead of the due date a reminder should go out
	LeadDays     int        `db:"lead_days" json:"lead_days"`
	AutoPay      bool       `db:"auto_pay" json:"auto_pay"`
	AutoDetected bool       `db:"auto_detected" json:"auto_detected"`
	Active       bool       `db:"active" json:"active"`
	LastPaidOn   *time.Time `db:"last_paid_on" json:"last_paid_on"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at"`
}

// NextDueDate returns the first due date for the bill strictly after the date provided.
// The raw calendar due date is clamped to the month length and then adjusted forward to
// a business day, a bill due on a weekend or holiday is payable the next business day.
func (b *Bill) NextDueDate(after time.Time, cfg bizday.Config) time.Time {
	interval := b.IntervalMonths
	if interval < 1 {
		interval = 1
	}
	loc := after.Location()
	anchorYear, anchorMonth := b.FirstDueOn.Year(), b.FirstDueOn.Month()
	if b.FirstDueOn.IsZero() {
		anchorYear, anchorMonth = after.Year(), after.Month()
	}
	afterDay := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, loc)
	candidate := dueDateInMonth(anchorYear, anchorMonth, b.DueDay, loc)
	for !candidate.After(afterDay) {
		candidate = dueDateInMonth(candidate.Year(), candidate.Month()+time.Month(interval), b.DueDay, loc)
	}
	return bizday.AdjustToBusinessDay(candidate, cfg)
}

// RemindOn returns the date a reminder for the due date should go out, LeadDays
// business days ahead of it
func (b *Bill) RemindOn(due time.Time, cfg bizday.Config) time.Time {
	return bizday.AddBusinessDays(due, -b.LeadDays, cfg)
}

//dueDateInMonth returns midnight on the bill due day in the month provided, pulling the
//day back to the last day of short months. time.Date normalizes month overflow
func dueDateInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// UpcomingBill is a bill with its next computed due and reminder dates
type UpcomingBill struct {
	Bill
	DueOn            time.Time `json:"due_on"`
	RemindOn         time.Time `json:"remind_on"`
	BusinessDaysLeft int       `json:"business_days_left"`
}

// UpcomingBills computes the next due date for every bill provided and returns the ones
// due within horizonDays calendar days of asOf, ordered by due date
func UpcomingBills(bills []Bill, asOf time.Time, horizonDays int, cfg bizday.Config) []UpcomingBill {
	horizon := asOf.AddDate(0, 0, horizonDays)
	results := make([]UpcomingBill, 0)
	for _, bill := range bills {
		due := bill.NextDueDate(asOf, cfg)
		if due.After(horizon) {
			continue
		}
		results = append(results, UpcomingBill{
			Bill:             bill,
			DueOn:            due,
			RemindOn:         bill.RemindOn(due, cfg),
			BusinessDaysLeft: bizday.BusinessDaysBetween(asOf, due, cfg),
		})
	}
	//bills were loaded by name, order the result by due date
	sort.Slice(results, func(i, j int) bool {
		return results[i].DueOn.Before(results[j].DueOn)
	})
	return results
}

// ReminderNotice is the payload published on the reminder subject when a bill enters
// its reminder window
type ReminderNotice struct {
	BillId           int64           `json:"bill_id"`
	BillName         string          `json:"bill_name"`
	Merchant         string          `json:"merchant"`
	Amount           decimal.Decimal `json:"amount"`
	DueOn            time.Time       `json:"due_on"`
	RemindOn         time.Time       `json:"remind_on"`
	BusinessDaysLeft int             `json:"business_days_left"`
	AutoPay          bool            `json:"auto_pay"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// SaveBill saves new or updates existing Bills. Existing records are determined by a
// non-zero Bill.Id
func SaveBill(tx *sqlx.Tx, bill *Bill) error {
	statementString := "insert into bill ( " +
		"account_id, " +
		"name, " +
		"merchant, " +
		"amount, " +
		"due_day, " +
		"interval_months, " +
		"first_due_on, " +
		"lead_days, " +
		"auto_pay, " +
		"auto_detected, " +
		"active, " +
		"last_paid_on, " +
		"created_at, " +
		"updated_at) " +
		"values (" +
		":account_id, " +
		":name, " +
		":merchant, " +
		":amount, " +
		":due_day, " +
		":interval_months, " +
		":first_due_on, " +
		":lead_days, " +
		":auto_pay, " +
		":auto_detected, " +
		":active, " +
		":last_paid_on, " +
		":created_at, " +
		":updated_at)"
	if bill.Id != 0 {
		statementString = "update bill set " +
			"account_id = :account_id, " +
			"name = :name, " +
			"merchant = :merchant, " +
			"amount = :amount, " +
			"due_day = :due_day, " +
			"interval_months = :interval_months, " +
			"first_due_on = :first_due_on, " +
			"lead_days = :lead_days, " +
			"auto_pay = :auto_pay, " +
			"auto_detected = :auto_detected, " +
			"active = :active, " +
			"last_paid_on = :last_paid_on, " +
			"updated_at = :updated_at " +
			" where id = :id"
	}
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, bill)
	if err != nil {
		return err
	}
	if bill.Id == 0 {
		statementString = tx.Rebind("SELECT id FROM bill where name = ? and merchant = ? " +
			"order by id desc limit 1")
		err = tx.Get(&bill.Id, statementString, bill.Name, bill.Merchant)
	}
	return err
}

// GetBill retrieves Bill with billId
func GetBill(db *sqlx.DB, billId int64) (*Bill, error) {
	query := "select * from bill where id = $1"
	bill := Bill{}
	err := db.Get(&bill, db.Rebind(query), billId)
	return &bill, err
}

// GetActiveBills retrieves all active bills
func GetActiveBills(db *sqlx.DB) ([]Bill, error) {
	query := "select * from bill where active = true order by name"
	var results []Bill
	err := db.Select(&results, query)
	return results, err
}

// MarkBillPaid records that a payment for the bill was seen on paidOn
func MarkBillPaid(db *sqlx.DB, billId int64, paidOn time.Time) error {
	statement := "update bill set last_paid_on = $1, updated_at = $2 where id = $3"
	_, err := db.Exec(db.Rebind(statement), paidOn, time.Now(), billId)
	return err
}
