package finapi

import (
	"context"
	"encoding/json"
	"fmt"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

//writeJSON marshals payload and writes it to http.ResponseWriter as a json response
func writeJSON(log *logger.Logger, w http.ResponseWriter, payload interface{}) {
	writeJSONStatus(log, w, http.StatusOK, payload)
}

//writeJSONStatus marshals payload and writes it to http.ResponseWriter as a json
//response with the status code provided
func writeJSONStatus(log *logger.Logger, w http.ResponseWriter, status int, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	byteCount, err := w.Write(jsonData)
	if err != nil {
		log.Printf("Error writing json response: %s", err)
		return
	}
	log.Printf("wrote %d bytes in json response.", byteCount)
}

//dateParam reads a yyyy-mm-dd form value, using fallback when the parameter is absent
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	value := r.FormValue(name)
	if value == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", value)
}

//requiredDateParam reads a yyyy-mm-dd form value, erroring when the parameter is absent
func requiredDateParam(r *http.Request, name string) (time.Time, error) {
	value := r.FormValue(name)
	if value == "" {
		return time.Time{}, fmt.Errorf("missing %s parameter", name)
	}
	return time.Parse("2006-01-02", value)
}

//intParam reads an integer form value, using fallback when the parameter is absent
func intParam(r *http.Request, name string, fallback int) (int, error) {
	value := r.FormValue(name)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

//createServer creates configured http.Server for responding to finance api requests
func createServer(log *logger.Logger,
	db *sqlx.DB,
	calendar bizday.Config,
	destination transactionDestination,
	conf Conf) *http.Server {

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/calendar/day", makeCalendarDayHandler(log, calendar))
	r.Handle("/calendar/shift", makeCalendarShiftHandler(log, calendar))
	r.Handle("/calendar/span", makeCalendarSpanHandler(log, calendar))
	r.Handle("/accounts", makeAccountListHandler(log, db))
	r.Handle("/transactions", makeTransactionListHandler(log, db))
	r.Handle("/bills", makeBillCreateHandler(log, db, calendar)).Methods("POST")
	r.Handle("/bills/upcoming", makeUpcomingBillHandler(log, db, calendar, conf.UpcomingHorizonDays))
	r.Handle("/bills/{billId}", makeBillDetailHandler(log, db, calendar)).Methods("GET")
	r.Handle("/alerts", makeAlertListHandler(log, db))
	r.Handle("/alerts/{alertId}/acknowledge", makeAlertAcknowledgeHandler(log, db)).Methods("POST")
	r.Handle("/alerts/{alertId}/snooze", makeAlertSnoozeHandler(log, db)).Methods("POST")
	r.Handle("/goals", makeGoalListHandler(log, db, calendar)).Methods("GET")
	r.Handle("/goals", makeGoalCreateHandler(log, db, calendar)).Methods("POST")
	r.Handle("/goals/{goalId}/contribute", makeGoalContributeHandler(log, db, calendar)).Methods("POST")
	r.Handle("/recurring", makeRecurringHandler(log, db, calendar, conf.RecurringWindowDays))
	r.Handle("/summary/monthly", makeMonthlySummaryHandler(log, db, conf.SummaryMonths))
	r.Handle("/webhooks/transactions", makeTransactionWebhookHandler(log, db, destination)).Methods("POST")
	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(conf.HttpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}
	return srv
}

//runWebService starts up finance api web service, and terminates on shutdown signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	db *sqlx.DB,
	calendar bizday.Config,
	destination transactionDestination,
	conf Conf,
	shutdownSignal chan bool,
) {
	wg.Add(1)
	defer wg.Done()
	srv := createServer(log, db, calendar, destination, conf)
	log.Printf("Starting server on port %d", conf.HttpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()

	select {
	case <-shutdownSignal:
		log.Printf("ending webservice on shutdown signal")
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			log.Printf("error shutting down webservice, error:%s", err)
		}
	}

}
