// Package reminder watches active bills and credit card accounts, opening alerts and
// publishing notices as due dates approach and utilization thresholds are crossed
package reminder

import (
	"fmt"
	logger "log"
	"os"
	"sync"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

//Conf contains all configurable parameters in reminder
type Conf struct {
	ScanEverySeconds           int
	ReminderHorizonDays        int
	WarnUtilizationPercent     float64
	CriticalUtilizationPercent float64
	PaymentTolerancePercent    float64
	PaymentWindowDays          int
	TransactionSubject         string
	ReminderSubject            string
	AlertSubject               string
	ExtraHolidays              []string
}

//StartReminderService starts all routines for bill reminders and utilization alerts
//shuts down all routines after receiving on shutdownSignal
func StartReminderService(log *logger.Logger,
	db *sqlx.DB,
	shutdownSignal chan os.Signal,
	natsConn *nats.Conn,
	conf Conf) error {

	calendar, err := holidayCalendar(conf.ExtraHolidays)
	if err != nil {
		return err
	}

	log.Println("Creating noticeDestination")
	destination := &natsNoticeDestination{
		natsConn:        natsConn,
		reminderSubject: conf.ReminderSubject,
		alertSubject:    conf.AlertSubject,
	}

	// start up background loops
	wg := sync.WaitGroup{}
	dueScanShutdown := make(chan bool, 1)
	utilizationShutdown := make(chan bool, 1)
	paymentListenerShutdown := make(chan bool, 1)

	log.Println("Starting due bill scan loop")
	go runDueScanLoop(log, &wg, db, destination, calendar, conf, dueScanShutdown)
	log.Println("Starting utilization loop")
	go runUtilizationLoop(log, &wg, db, destination, conf, utilizationShutdown)
	log.Println("Starting payment listener")
	go runPaymentListener(log, &wg, db, natsConn, calendar, conf, paymentListenerShutdown)

	select {
	case <-shutdownSignal:
		log.Printf("Exiting on shutdown signal, shutting down subroutines")
		dueScanShutdown <- true
		utilizationShutdown <- true
		paymentListenerShutdown <- true
		wg.Wait()
		log.Printf("Subroutines shut down, exiting reminder service")

	}
	return nil
}

//holidayCalendar builds the business day calendar the service runs against, the default
//federal closures plus any extra dates the user observes
func holidayCalendar(extraHolidays []string) (bizday.Config, error) {
	calendar := bizday.DefaultConfig()
	for _, dateString := range extraHolidays {
		date, err := time.Parse("2006-01-02", dateString)
		if err != nil {
			return calendar, fmt.Errorf("unable to parse extra holiday %s, error: %w", dateString, err)
		}
		calendar.Holidays = append(calendar.Holidays,
			bizday.Fixed(date.Year(), date.Month(), date.Day(), "Extra holiday"))
	}
	return calendar, nil
}

//dayOf truncates a time to its calendar date in its own location
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

//daysApart returns the number of calendar days between two dates, ignoring time of day
func daysApart(a time.Time, b time.Time) int {
	first := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	second := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(second.Sub(first).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

//fmtDuration returns a string presentation of time.Duration for logging
func fmtDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	mill := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d.%d", h, m, mill)
}
