package finapi

import (
	"errors"
	logger "log"
	"net/http"
	"strconv"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

//alertListHandler responds with alerts in a given status, active by default
type alertListHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

//alertListHandler factory
func makeAlertListHandler(log *logger.Logger, db *sqlx.DB) *alertListHandler {
	return &alertListHandler{
		log: log,
		db:  db,
	}
}

//ServeHTTP implements alertListHandler's http.Handler interface
func (h *alertListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := r.FormValue("status")
	if status == "" {
		status = ledger.AlertStatusActive
	}
	alerts, err := ledger.GetAlertsByStatus(h.db, status)
	if err != nil {
		h.log.Printf("Error loading alerts with status %s, error:%v", status, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(h.log, w, &JsonAlertListResponse{
		Status: status,
		Alerts: alerts,
	})
}

//JsonAlertListResponse provides json response wrapper around ledger.Alerts
type JsonAlertListResponse struct {
	Status string         `json:"status"`
	Alerts []ledger.Alert `json:"alerts"`
}

//alertIdVar reads the alertId path variable from the request
func alertIdVar(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["alertId"], 10, 64)
}

//alertAcknowledgeHandler moves an alert to the acknowledged status
type alertAcknowledgeHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

//alertAcknowledgeHandler factory
func makeAlertAcknowledgeHandler(log *logger.Logger, db *sqlx.DB) *alertAcknowledgeHandler {
	return &alertAcknowledgeHandler{
		log: log,
		db:  db,
	}
}

//ServeHTTP implements alertAcknowledgeHandler's http.Handler interface
func (h *alertAcknowledgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	alertId, err := alertIdVar(r)
	if err != nil {
		http.Error(w, "unable to parse alertId", http.StatusBadRequest)
		return
	}
	err = ledger.AcknowledgeAlert(h.db, alertId, time.Now())
	if err != nil {
		if errors.Is(err, ledger.ErrAlertNotOpen) {
			http.Error(w, "alert is not open", http.StatusConflict)
			return
		}
		h.log.Printf("Error acknowledging alert id:%d, error:%v", alertId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	serveAlert(h.log, h.db, w, alertId)
}

//alertSnoozeHandler moves an active alert to snoozed until a date
type alertSnoozeHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

//alertSnoozeHandler factory
func makeAlertSnoozeHandler(log *logger.Logger, db *sqlx.DB) *alertSnoozeHandler {
	return &alertSnoozeHandler{
		log: log,
		db:  db,
	}
}

//ServeHTTP implements alertSnoozeHandler's http.Handler interface
func (h *alertSnoozeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	alertId, err := alertIdVar(r)
	if err != nil {
		http.Error(w, "unable to parse alertId", http.StatusBadRequest)
		return
	}
	until, err := requiredDateParam(r, "until")
	if err != nil {
		http.Error(w, "unable to parse until parameter", http.StatusBadRequest)
		return
	}
	err = ledger.SnoozeAlert(h.db, alertId, until)
	if err != nil {
		if errors.Is(err, ledger.ErrAlertNotOpen) {
			http.Error(w, "alert is not active", http.StatusConflict)
			return
		}
		h.log.Printf("Error snoozing alert id:%d, error:%v", alertId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	serveAlert(h.log, h.db, w, alertId)
}

//serveAlert responds with the current state of a single alert
func serveAlert(log *logger.Logger, db *sqlx.DB, w http.ResponseWriter, alertId int64) {
	alert, err := ledger.GetAlert(db, alertId)
	if err != nil {
		log.Printf("Error loading alert id:%d, error:%v", alertId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(log, w, alert)
}
