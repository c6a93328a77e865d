package finapi

import (
	"fmt"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
)

//transactionListHandler responds with transactions posted inside a date range,
//optionally narrowed to a set of accounts
type transactionListHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

//transactionListHandler factory
func makeTransactionListHandler(log *logger.Logger, db *sqlx.DB) *transactionListHandler {
	return &transactionListHandler{
		log: log,
		db:  db,
	}
}

//ServeHTTP implements transactionListHandler's http.Handler interface
func (h *transactionListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	to, err := dateParam(r, "to", time.Now())
	if err != nil {
		http.Error(w, "unable to parse to parameter", http.StatusBadRequest)
		return
	}
	from, err := dateParam(r, "from", to.AddDate(0, 0, -30))
	if err != nil {
		http.Error(w, "unable to parse from parameter", http.StatusBadRequest)
		return
	}
	accountIds, err := parseAccountIds(r.FormValue("accounts"))
	if err != nil {
		http.Error(w, "unable to parse accounts parameter", http.StatusBadRequest)
		return
	}
	var transactions []ledger.Transaction
	if len(accountIds) > 0 {
		transactions, err = ledger.GetTransactionsForAccountsBetween(h.db, accountIds, from, to)
	} else {
		transactions, err = ledger.GetTransactionsBetween(h.db, from, to)
	}
	if err != nil {
		h.log.Printf("Error loading transactions, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = make([]ledger.Transaction, 0)
	}
	writeJSON(h.log, w, &JsonTransactionListResponse{
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
		Transactions: transactions,
	})
}

//JsonTransactionListResponse provides json response wrapper around transaction rows
type JsonTransactionListResponse struct {
	From         string               `json:"from"`
	To           string               `json:"to"`
	Transactions []ledger.Transaction `json:"transactions"`
}

//parseAccountIds splits a comma separated account id parameter. An empty value is
//no account filter at all
func parseAccountIds(value string) ([]int64, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	results := make([]int64, 0, len(parts))
	for _, part := range parts {
		accountId, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse account id %s", part)
		}
		results = append(results, accountId)
	}
	return results, nil
}
