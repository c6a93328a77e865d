package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	logger "log"
	"sync"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//runUtilizationLoop starts loop that wakes expired snoozes and evaluates credit account
//utilization against the configured thresholds
func runUtilizationLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	db *sqlx.DB,
	destination noticeDestination,
	conf Conf,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()

	loopDuration := time.Duration(conf.ScanEverySeconds) * time.Second

	sleepChan := make(chan bool)
	sleep := time.Duration(0)

	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("Exiting utilization loop on shutdown signal")
			return
		case <-sleepChan:
		}

		sleep = loopDuration

		start := time.Now()

		reactivated, err := ledger.ReactivateExpiredSnoozes(db, start)
		if err != nil {
			log.Printf("error reactivating expired snoozes. error:%v\n", err)
		} else if reactivated > 0 {
			log.Printf("reactivated %d snoozed alerts\n", reactivated)
		}

		opened, err := evaluateUtilization(log, db, destination, start, conf)
		if err != nil {
			log.Printf("error evaluating credit utilization. error:%v\n", err)
			continue
		}
		if opened > 0 {
			log.Printf("opened or escalated %d utilization alerts\n", opened)
		}

		workTook := time.Now().Sub(start)

		if workTook >= loopDuration {
			sleep = time.Duration(0)
		} else {
			sleep = loopDuration - workTook
		}

	}
}

//evaluateUtilization checks every credit account with a limit against the warn and
//critical thresholds, opening an alert the first time a threshold is crossed and
//escalating an open warn alert when utilization reaches the critical threshold.
//returns the number of alerts opened or escalated
func evaluateUtilization(log *logger.Logger,
	db *sqlx.DB,
	destination noticeDestination,
	now time.Time,
	conf Conf) (int, error) {

	accounts, err := ledger.GetCreditAccounts(db)
	if err != nil {
		return 0, fmt.Errorf("unable to load credit accounts, error: %w", err)
	}
	warn := decimal.NewFromFloat(conf.WarnUtilizationPercent)
	critical := decimal.NewFromFloat(conf.CriticalUtilizationPercent)
	opened := 0
	for i := range accounts {
		account := &accounts[i]
		utilization, ok := account.Utilization()
		if !ok {
			continue
		}
		severity, threshold, crossed := utilizationLevel(utilization, warn, critical)
		if !crossed {
			//below the warn threshold, any open alert is left for the user to acknowledge
			continue
		}
		existing, err := ledger.GetOpenAlert(db, account.Id, ledger.AlertKindCreditUtilization)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Printf("error checking for open alert for account id:%d. error:%v\n", account.Id, err)
			continue
		}
		if err == nil {
			//an alert is already open, escalate it only when the severity has risen
			if existing.Severity == ledger.AlertSeverityCritical || severity != ledger.AlertSeverityCritical {
				continue
			}
			existing.Severity = severity
			existing.Message = utilizationMessage(account.Name, utilization)
			existing.Utilization = decimal.NullDecimal{Decimal: utilization, Valid: true}
			existing.Threshold = decimal.NullDecimal{Decimal: threshold, Valid: true}
			existing.UpdatedAt = &now
			err = ledger.RecordAlert(db, existing)
			if err != nil {
				log.Printf("error escalating alert id:%d. error:%v\n", existing.Id, err)
				continue
			}
			publishAlertEvent(log, destination, existing)
			opened++
			continue
		}
		alert := ledger.Alert{
			AccountId:   &account.Id,
			Kind:        ledger.AlertKindCreditUtilization,
			Severity:    severity,
			Message:     utilizationMessage(account.Name, utilization),
			Utilization: decimal.NullDecimal{Decimal: utilization, Valid: true},
			Threshold:   decimal.NullDecimal{Decimal: threshold, Valid: true},
			Status:      ledger.AlertStatusActive,
			CreatedAt:   now,
		}
		err = ledger.RecordAlert(db, &alert)
		if err != nil {
			log.Printf("error recording utilization alert for account id:%d. error:%v\n", account.Id, err)
			continue
		}
		publishAlertEvent(log, destination, &alert)
		opened++
	}
	return opened, nil
}

//utilizationLevel grades utilization against the warn and critical thresholds.
//returns false when utilization is below both
func utilizationLevel(utilization decimal.Decimal,
	warn decimal.Decimal,
	critical decimal.Decimal) (severity string, threshold decimal.Decimal, crossed bool) {
	if utilization.GreaterThanOrEqual(critical) {
		return ledger.AlertSeverityCritical, critical, true
	}
	if utilization.GreaterThanOrEqual(warn) {
		return ledger.AlertSeverityWarn, warn, true
	}
	return "", decimal.Zero, false
}

func utilizationMessage(accountName string, utilization decimal.Decimal) string {
	return fmt.Sprintf("%s is at %s%% of its credit limit", accountName, utilization.StringFixed(1))
}

//publishAlertEvent sends a ledger.AlertEvent for alert to destination, logging on failure
func publishAlertEvent(log *logger.Logger, destination noticeDestination, alert *ledger.Alert) {
	event := ledger.AlertEvent{
		AlertId:     alert.Id,
		AccountId:   alert.AccountId,
		Kind:        alert.Kind,
		Severity:    alert.Severity,
		Message:     alert.Message,
		Utilization: alert.Utilization.Decimal,
		Threshold:   alert.Threshold.Decimal,
		CreatedAt:   alert.CreatedAt,
	}
	err := destination.PublishAlert(&event)
	if err != nil {
		log.Printf("error publishing AlertEvent for alert id:%d. error:%v\n", alert.Id, err)
	}
}
