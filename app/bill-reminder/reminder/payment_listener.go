package reminder

import (
	"database/sql"
	"encoding/json"
	"errors"
	logger "log"
	"os"
	"sync"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/fincast/fincast/business/recurring"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

//runPaymentListener starts NATS subscription on the transaction subject for ledger.TransactionEvent
//messages, matching posted payments against active bills so reminders stop once a bill is paid.
//uses the NATS queue "bill-reminder", so more than one reminder process can share the work.
//Ends NATS subscription and returns on shutdownSignal
func runPaymentListener(
	log *logger.Logger,
	wg *sync.WaitGroup,
	db *sqlx.DB,
	natsConn *nats.Conn,
	calendar bizday.Config,
	conf Conf,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()

	processor := makePaymentProcessor(log, db, calendar, conf)

	ch := make(chan *nats.Msg, 64)
	log.Printf("Subscribing to %s in queue group bill-reminder on nats: %v\n", conf.TransactionSubject,
		natsConn.Servers())
	sub, err := natsConn.ChanQueueSubscribe(conf.TransactionSubject, "bill-reminder", ch)
	if err != nil {
		log.Printf("Unable to establish subscription to nats server: %v\n", err)
		os.Exit(1)
	}

	for {
		select {
		case msg := <-ch:
			processor.processTransactionEventFromMsg(msg)
			break
		case <-shutdownSignal:
			log.Printf("ending payment listener on shutdown signal\n")
			log.Printf("unsubscribing to nats\n")
			err = sub.Unsubscribe()
			if err != nil {
				log.Printf("Error unsubscribing to nats:%s", err)
			}
			return
		}
	}
}

//paymentProcessor matches posted transactions against active bills
type paymentProcessor struct {
	log        *logger.Logger
	db         *sqlx.DB
	calendar   bizday.Config
	tolerance  decimal.Decimal
	windowDays int
}

//makePaymentProcessor builds paymentProcessor, converting the configured tolerance
//percentage into a fraction
func makePaymentProcessor(log *logger.Logger,
	db *sqlx.DB,
	calendar bizday.Config,
	conf Conf) *paymentProcessor {
	return &paymentProcessor{
		log:        log,
		db:         db,
		calendar:   calendar,
		tolerance:  decimal.NewFromFloat(conf.PaymentTolerancePercent).Div(decimal.NewFromInt(100)),
		windowDays: conf.PaymentWindowDays,
	}
}

//processTransactionEventFromMsg unmarshal ledger.TransactionEvent and mark any bills its
//transactions paid
func (p *paymentProcessor) processTransactionEventFromMsg(msg *nats.Msg) {
	var event ledger.TransactionEvent
	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		p.log.Printf("error parsing TransactionEvent: %v, payload:%s", err, string(msg.Data))
		return
	}
	bills, err := ledger.GetActiveBills(p.db)
	if err != nil {
		p.log.Printf("error loading active bills for payment matching. error:%v", err)
		return
	}
	matched := 0
	for _, transaction := range event.Transactions {
		if !transaction.IsExpense() || transaction.Pending {
			continue
		}
		for i := range bills {
			bill := &bills[i]
			if !p.matchesBill(&transaction, bill) {
				continue
			}
			p.markPaid(bill, &transaction)
			matched++
			break
		}
	}
	if matched > 0 {
		p.log.Printf("matched %d payments to bills from %s", matched, event.Source)
	}
}

//matchesBill returns true when a posted transaction looks like a payment of bill: the
//merchants normalize to the same key, the amount is within tolerance of the expected
//amount and the transaction posted within the payment window around a due date
func (p *paymentProcessor) matchesBill(transaction *ledger.Transaction, bill *ledger.Bill) bool {
	if bill.Amount.IsZero() {
		return false
	}
	if bill.LastPaidOn != nil && daysApart(*bill.LastPaidOn, transaction.PostedOn) <= p.windowDays {
		//a payment already landed near this date, don't match the bill twice
		return false
	}
	key := recurring.NormalizeMerchant(transaction.Merchant)
	if key == "" || key != recurring.NormalizeMerchant(bill.Merchant) {
		return false
	}
	expected := bill.Amount.Abs()
	drift := transaction.Amount.Abs().Sub(expected).Abs()
	if drift.Div(expected).GreaterThan(p.tolerance) {
		return false
	}
	//find the due date the payment would satisfy, starting the search far enough back
	//that a due date earlier in the window is found
	searchFrom := transaction.PostedOn.AddDate(0, 0, -(p.windowDays + 1))
	due := bill.NextDueDate(searchFrom, p.calendar)
	return daysApart(transaction.PostedOn, due) <= p.windowDays
}

//markPaid records the payment date on bill and acknowledges its open due alert
func (p *paymentProcessor) markPaid(bill *ledger.Bill, transaction *ledger.Transaction) {
	p.log.Printf("transaction %s for %s paid bill %s id:%d", transaction.ExternalId,
		transaction.Amount.StringFixed(2), bill.Name, bill.Id)
	err := ledger.MarkBillPaid(p.db, bill.Id, transaction.PostedOn)
	if err != nil {
		p.log.Printf("error marking bill id:%d paid. error:%v", bill.Id, err)
		return
	}
	paidOn := transaction.PostedOn
	bill.LastPaidOn = &paidOn

	open, err := ledger.GetOpenAlertForBill(p.db, bill.Id, ledger.AlertKindBillDue)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			p.log.Printf("error loading open alert for bill id:%d. error:%v", bill.Id, err)
		}
		return
	}
	err = ledger.AcknowledgeAlert(p.db, open.Id, time.Now())
	if err != nil && !errors.Is(err, ledger.ErrAlertNotOpen) {
		p.log.Printf("error acknowledging alert id:%d. error:%v", open.Id, err)
	}
}
