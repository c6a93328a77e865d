package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	AlertStatusActive       = "active"
	AlertStatusSnoozed      = "snoozed"
	AlertStatusAcknowledged = "acknowledged"
)

const (
	AlertKindCreditUtilization = "credit_utilization"
	AlertKindBillDue           = "bill_due"
)

const (
	AlertSeverityWarn     = "warn"
	AlertSeverityCritical = "critical"
)

// ErrAlertNotOpen is returned when a state change is requested for an alert that is
// not in a status the change is allowed from
var ErrAlertNotOpen = errors.New("alert is not in a status that allows this change")

// Alert is one open or resolved condition surfaced to the user. Status moves from
// active to acknowledged, which is terminal, or to snoozed with a wake up date, after
// which it returns to active.
type Alert struct {
	Id             int64               `db:"id" json:"id"`
	AccountId      *int64              `db:"account_id" json:"account_id"`
	BillId         *int64              `db:"bill_id" json:"bill_id"`
	Kind           string              `db:"kind" json:"kind"`
	Severity       string              `db:"severity" json:"severity"`
	Message        string              `db:"message" json:"message"`
	Utilization    decimal.NullDecimal `db:"utilization" json:"utilization"`
	Threshold      decimal.NullDecimal `db:"threshold" json:"threshold"`
	Status         string              `db:"status" json:"status"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time          `db:"updated_at" json:"updated_at"`
	AcknowledgedAt *time.Time          `db:"acknowledged_at" json:"acknowledged_at"`
	SnoozedUntil   *time.Time          `db:"snoozed_until" json:"snoozed_until"`
}

// AlertEvent is the payload published on the alert subject when an alert is opened or
// escalated
type AlertEvent struct {
	AlertId     int64           `json:"alert_id"`
	AccountId   *int64          `json:"account_id"`
	Kind        string          `json:"kind"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	Utilization decimal.Decimal `json:"utilization"`
	Threshold   decimal.Decimal `json:"threshold"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecordAlert saves new or updates existing Alerts. Existing records are determined by
// a non-zero Alert.Id
func RecordAlert(db *sqlx.DB, alert *Alert) error {
	statementString := "insert into alert ( " +
		"account_id, " +
		"bill_id, " +
		"kind, " +
		"severity, " +
		"message, " +
		"utilization, " +
		"threshold, " +
		"status, " +
		"created_at, " +
		"updated_at, " +
		"acknowledged_at, " +
		"snoozed_until) " +
		"values (" +
		":account_id, " +
		":bill_id, " +
		":kind, " +
		":severity, " +
		":message, " +
		":utilization, " +
		":threshold, " +
		":status, " +
		":created_at, " +
		":updated_at, " +
		":acknowledged_at, " +
		":snoozed_until)"
	if alert.Id != 0 {
		statementString = "update alert set " +
			"account_id = :account_id, " +
			"bill_id = :bill_id, " +
			"kind = :kind, " +
			"severity = :severity, " +
			"message = :message, " +
			"utilization = :utilization, " +
			"threshold = :threshold, " +
			"status = :status, " +
			"updated_at = :updated_at, " +
			"acknowledged_at = :acknowledged_at, " +
			"snoozed_until = :snoozed_until " +
			" where id = :id"
	}
	statementString = db.Rebind(statementString)
	_, err := db.NamedExec(statementString, alert)
	if err != nil {
		return err
	}
	if alert.Id == 0 {
		statementString = db.Rebind("SELECT id FROM alert where kind = ? and created_at = ? " +
			"order by id desc limit 1")
		err = db.Get(&alert.Id, statementString, alert.Kind, alert.CreatedAt)
	}
	return err
}

// GetAlert retrieves Alert with alertId
func GetAlert(db *sqlx.DB, alertId int64) (*Alert, error) {
	query := "select * from alert where id = $1"
	alert := Alert{}
	err := db.Get(&alert, db.Rebind(query), alertId)
	return &alert, err
}

// GetAlertsByStatus retrieves alerts in status, newest first
func GetAlertsByStatus(db *sqlx.DB, status string) ([]Alert, error) {
	query := "select * from alert where status = $1 order by created_at desc"
	var results []Alert
	err := db.Select(&results, db.Rebind(query), status)
	return results, err
}

// GetOpenAlert retrieves the active or snoozed alert of kind for accountId, or
// sql.ErrNoRows when the account has none open. Only one open alert of a kind is kept
// per account
func GetOpenAlert(db *sqlx.DB, accountId int64, kind string) (*Alert, error) {
	query := "select * from alert where account_id = $1 and kind = $2 " +
		"and status in ($3, $4) order by created_at desc limit 1"
	alert := Alert{}
	err := db.Get(&alert, db.Rebind(query), accountId, kind, AlertStatusActive, AlertStatusSnoozed)
	return &alert, err
}

// GetOpenAlertForBill retrieves the active or snoozed alert of kind for billId, or
// sql.ErrNoRows when the bill has none open
func GetOpenAlertForBill(db *sqlx.DB, billId int64, kind string) (*Alert, error) {
	query := "select * from alert where bill_id = $1 and kind = $2 " +
		"and status in ($3, $4) order by created_at desc limit 1"
	alert := Alert{}
	err := db.Get(&alert, db.Rebind(query), billId, kind, AlertStatusActive, AlertStatusSnoozed)
	return &alert, err
}

// AcknowledgeAlert moves an active or snoozed alert to acknowledged, the terminal
// status. Returns ErrAlertNotOpen if the alert is already acknowledged or missing
func AcknowledgeAlert(db *sqlx.DB, alertId int64, at time.Time) error {
	statement := "update alert set status = $1, acknowledged_at = $2, updated_at = $2, snoozed_until = null " +
		"where id = $3 and status in ($4, $5)"
	result, err := db.Exec(db.Rebind(statement), AlertStatusAcknowledged, at, alertId,
		AlertStatusActive, AlertStatusSnoozed)
	if err != nil {
		return fmt.Errorf("unable to acknowledge alert id:%d, error: %w", alertId, err)
	}
	return requireRowChanged(result, alertId)
}

// SnoozeAlert moves an active alert to snoozed until the date provided. Returns
// ErrAlertNotOpen if the alert is not active
func SnoozeAlert(db *sqlx.DB, alertId int64, until time.Time) error {
	statement := "update alert set status = $1, snoozed_until = $2, updated_at = $3 " +
		"where id = $4 and status = $5"
	result, err := db.Exec(db.Rebind(statement), AlertStatusSnoozed, until, time.Now(), alertId,
		AlertStatusActive)
	if err != nil {
		return fmt.Errorf("unable to snooze alert id:%d, error: %w", alertId, err)
	}
	return requireRowChanged(result, alertId)
}

// ReactivateExpiredSnoozes returns snoozed alerts whose snooze has lapsed as of the
// date provided to active, and reports how many were woken
func ReactivateExpiredSnoozes(db *sqlx.DB, asOf time.Time) (int64, error) {
	statement := "update alert set status = $1, snoozed_until = null, updated_at = $2 " +
		"where status = $3 and snoozed_until <= $2"
	result, err := db.Exec(db.Rebind(statement), AlertStatusActive, asOf, AlertStatusSnoozed)
	if err != nil {
		return 0, fmt.Errorf("unable to reactivate snoozed alerts, error: %w", err)
	}
	return result.RowsAffected()
}

//requireRowChanged turns a zero row update into ErrAlertNotOpen
func requireRowChanged(result sql.Result, alertId int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("alert id:%d: %w", alertId, ErrAlertNotOpen)
	}
	return nil
}
