package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	logger "log"
	"sync"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
)

//runDueScanLoop starts loop that checks active bills for approaching due dates and opens
//alerts for any inside their reminder window
func runDueScanLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	db *sqlx.DB,
	destination noticeDestination,
	calendar bizday.Config,
	conf Conf,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()

	loopDuration := time.Duration(conf.ScanEverySeconds) * time.Second

	sleepChan := make(chan bool)
	sleep := time.Duration(0) //scan immediately the first time

	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("Exiting due scan loop on shutdown signal")
			return
		case <-sleepChan:
		}

		//set default sleep for next loop in the event of an error after continue statements
		sleep = loopDuration

		// mark the time we start working
		start := time.Now()

		published, err := scanDueBills(log, db, destination, start, calendar, conf)
		if err != nil {
			log.Printf("error scanning due bills. error:%v\n", err)
			continue
		}
		if published > 0 {
			log.Printf("opened %d bill due alerts\n", published)
		}

		// attempt to run the loop every ScanEverySeconds by subtracting the time it took to perform the work
		workTook := time.Now().Sub(start)

		log.Printf("due scan took %s\n", fmtDuration(workTook))

		// if the work took longer than the loop duration don't sleep at all on the next loop
		if workTook >= loopDuration {
			sleep = time.Duration(0)
		} else {
			sleep = loopDuration - workTook
		}

	}
}

//scanDueBills evaluates every active bill against now, opening a bill due alert and
//publishing a ledger.ReminderNotice for each bill inside its reminder window that does
//not already have an open alert. returns the number of notices published
func scanDueBills(log *logger.Logger,
	db *sqlx.DB,
	destination noticeDestination,
	now time.Time,
	calendar bizday.Config,
	conf Conf) (int, error) {

	bills, err := ledger.GetActiveBills(db)
	if err != nil {
		return 0, fmt.Errorf("unable to load active bills, error: %w", err)
	}
	published := 0
	for i := range bills {
		bill := &bills[i]
		due, remindOn, inWindow := reminderWindow(bill, now, calendar, conf)
		if !inWindow {
			continue
		}
		_, err = ledger.GetOpenAlertForBill(db, bill.Id, ledger.AlertKindBillDue)
		if err == nil {
			//an alert is already open for this bill
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("error checking for open alert for bill id:%d. error:%v\n", bill.Id, err)
			continue
		}
		businessDaysLeft := bizday.BusinessDaysBetween(now, due, calendar)
		alert := ledger.Alert{
			AccountId: bill.AccountId,
			BillId:    &bill.Id,
			Kind:      ledger.AlertKindBillDue,
			Severity:  reminderSeverity(businessDaysLeft),
			Message:   fmt.Sprintf("%s is due on %s", bill.Name, due.Format("2006-01-02")),
			Status:    ledger.AlertStatusActive,
			CreatedAt: now,
		}
		err = ledger.RecordAlert(db, &alert)
		if err != nil {
			log.Printf("error recording bill due alert for bill id:%d. error:%v\n", bill.Id, err)
			continue
		}
		notice := ledger.ReminderNotice{
			BillId:           bill.Id,
			BillName:         bill.Name,
			Merchant:         bill.Merchant,
			Amount:           bill.Amount,
			DueOn:            due,
			RemindOn:         remindOn,
			BusinessDaysLeft: businessDaysLeft,
			AutoPay:          bill.AutoPay,
			GeneratedAt:      now,
		}
		err = destination.PublishReminder(&notice)
		if err != nil {
			log.Printf("error publishing ReminderNotice for bill id:%d. error:%v\n", bill.Id, err)
		}
		published++
	}
	return published, nil
}

//reminderWindow evaluates whether a bill is inside its reminder window as of now,
//returning the due date and reminder date along with the decision. a bill is outside
//its window when the due date is past the reminder horizon, the reminder date hasn't
//arrived, or a payment already landed near the due date
func reminderWindow(bill *ledger.Bill,
	now time.Time,
	calendar bizday.Config,
	conf Conf) (due time.Time, remindOn time.Time, inWindow bool) {
	due = bill.NextDueDate(now, calendar)
	remindOn = bill.RemindOn(due, calendar)
	if conf.ReminderHorizonDays > 0 && dayOf(due).After(dayOf(now).AddDate(0, 0, conf.ReminderHorizonDays)) {
		return due, remindOn, false
	}
	if dayOf(now).Before(dayOf(remindOn)) {
		return due, remindOn, false
	}
	if bill.LastPaidOn != nil && daysApart(*bill.LastPaidOn, due) <= conf.PaymentWindowDays {
		return due, remindOn, false
	}
	return due, remindOn, true
}

//reminderSeverity grades a bill due alert by how many business days remain to pay it
func reminderSeverity(businessDaysLeft int) string {
	if businessDaysLeft <= 1 {
		return ledger.AlertSeverityCritical
	}
	return ledger.AlertSeverityWarn
}
