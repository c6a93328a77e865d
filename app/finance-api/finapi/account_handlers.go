package finapi

import (
	logger "log"
	"net/http"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//accountListHandler responds with every tracked account
type accountListHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

//accountListHandler factory
func makeAccountListHandler(log *logger.Logger, db *sqlx.DB) *accountListHandler {
	return &accountListHandler{
		log: log,
		db:  db,
	}
}

//ServeHTTP implements accountListHandler's http.Handler interface
func (h *accountListHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	accounts, err := ledger.GetAllAccounts(h.db)
	if err != nil {
		h.log.Printf("Error loading accounts, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(h.log, w, &JsonAccountListResponse{
		Accounts: makeJsonAccountList(accounts),
	})
}

//JsonAccount is an account with its credit utilization when one can be measured
type JsonAccount struct {
	ledger.Account
	Utilization *decimal.Decimal `json:"utilization,omitempty"`
}

//JsonAccountListResponse provides json response wrapper around account rows
type JsonAccountListResponse struct {
	Accounts []JsonAccount `json:"accounts"`
}

//makeJsonAccountList builds the account list response rows
func makeJsonAccountList(accounts []ledger.Account) []JsonAccount {
	results := make([]JsonAccount, 0)
	for i := range accounts {
		item := JsonAccount{Account: accounts[i]}
		if utilization, ok := accounts[i].Utilization(); ok {
			item.Utilization = &utilization
		}
		results = append(results, item)
	}
	return results
}
