// Package finapi serves the personal finance HTTP API: business day calendar queries,
// upcoming bills, alerts, savings goals, recurring charge candidates, monthly spending
// summaries and the transaction webhook
package finapi

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

//Conf contains all configurable parameters in finapi
type Conf struct {
	HttpPort            int
	UpcomingHorizonDays int
	RecurringWindowDays int
	SummaryMonths       int
	TransactionSubject  string
	ExtraHolidays       []string
}

//StartServices brings up the web service. Exits on shutdown signal
func StartServices(log *logger.Logger,
	db *sqlx.DB,
	shutdownSignal chan os.Signal,
	natsConn *nats.Conn,
	conf Conf) error {

	calendar, err := holidayCalendar(conf.ExtraHolidays)
	if err != nil {
		return err
	}

	destination := &natsTransactionDestination{
		natsConn: natsConn,
		subject:  conf.TransactionSubject,
	}

	wg := sync.WaitGroup{}
	webServiceShutdown := make(chan bool, 1)

	go runWebService(log, &wg, db, calendar, destination, conf, webServiceShutdown)

	select {
	case <-shutdownSignal:
		log.Printf("Exiting on shutdown signal, shutting down subroutines")
		webServiceShutdown <- true
		wg.Wait()
		log.Printf("Subroutines shut down, exiting finance api")

	}
	return nil
}

//holidayCalendar builds the business day calendar requests are evaluated against, the
//default federal closures plus any extra dates the user observes
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
