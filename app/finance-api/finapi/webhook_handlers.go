package finapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//transactionWebhookHandler accepts transaction batches pushed by an institution,
//saves them under a new import batch and announces them on the transaction subject
type transactionWebhookHandler struct {
	log         *logger.Logger
	db          *sqlx.DB
	destination transactionDestination
}

//transactionWebhookHandler factory
func makeTransactionWebhookHandler(log *logger.Logger,
	db *sqlx.DB,
	destination transactionDestination) *transactionWebhookHandler {
	return &transactionWebhookHandler{
		log:         log,
		db:          db,
		destination: destination,
	}
}

//webhookRequest is the expected body of a transaction webhook post
type webhookRequest struct {
	Source       string               `json:"source"`
	Transactions []webhookTransaction `json:"transactions"`
}

//webhookTransaction is one pushed transaction row, account_id is the institution's
//identifier for the account
type webhookTransaction struct {
	TransactionId string          `json:"transaction_id"`
	AccountId     string          `json:"account_id"`
	PostedOn      string          `json:"posted_on"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Description   *string         `json:"description"`
	Category      string          `json:"category"`
	Pending       bool            `json:"pending"`
}

//ServeHTTP implements transactionWebhookHandler's http.Handler interface
func (h *transactionWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var request webhookRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		http.Error(w, "unable to parse webhook body", http.StatusBadRequest)
		return
	}
	if request.Source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}
	if len(request.Transactions) == 0 {
		http.Error(w, "no transactions in webhook body", http.StatusBadRequest)
		return
	}
	transactions, externalAccountIds, err := buildWebhookTransactions(request.Transactions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	batch := &ledger.ImportBatch{
		Source:       "webhook:" + request.Source,
		DownloadedAt: now,
	}
	err = transact(h.log, h.db, func(tx *sqlx.Tx) error {
		err := ledger.SaveImportBatch(tx, batch)
		if err != nil {
			return err
		}
		bTx := &ledger.BatchTransaction{
			Batch: *batch,
			Tx:    tx,
		}
		accountIds := make(map[string]int64)
		for i, transaction := range transactions {
			accountId, err := webhookAccountId(bTx, accountIds, externalAccountIds[i], now)
			if err != nil {
				return err
			}
			transaction.AccountId = accountId
		}
		err = ledger.RecordTransactions(transactions, bTx)
		if err != nil {
			return err
		}
		batch.TransactionCount = len(transactions)
		batch.SavedAt = &now
		return ledger.SaveImportBatch(tx, batch)
	})
	if err != nil {
		h.log.Printf("Error saving webhook transactions from %s, error:%v", batch.Source, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	h.log.Printf("Saved %d webhook transactions from %s as import batch id:%d",
		batch.TransactionCount, batch.Source, batch.Id)

	h.publishTransactionEvent(batch, transactions, now)

	writeJSONStatus(h.log, w, http.StatusAccepted, &JsonWebhookResponse{
		ImportBatchId: batch.Id,
		Recorded:      batch.TransactionCount,
	})
}

//publishTransactionEvent announces a saved webhook batch on the transaction subject
func (h *transactionWebhookHandler) publishTransactionEvent(batch *ledger.ImportBatch,
	transactions []*ledger.Transaction,
	now time.Time) {
	event := &ledger.TransactionEvent{
		Source:        batch.Source,
		ImportBatchId: batch.Id,
		ReceivedAt:    now,
	}
	for _, transaction := range transactions {
		event.Transactions = append(event.Transactions, *transaction)
	}
	err := h.destination.PublishTransactions(event)
	if err != nil {
		h.log.Printf("Error publishing TransactionEvent for import batch id:%d, error:%v", batch.Id, err)
	}
}

//JsonWebhookResponse provides json response for an accepted webhook batch
type JsonWebhookResponse struct {
	ImportBatchId int64 `json:"import_batch_id"`
	Recorded      int   `json:"recorded"`
}

//buildWebhookTransactions creates ledger.Transactions from webhook rows, returning the
//institution account id each row belongs to in a parallel slice
func buildWebhookTransactions(rows []webhookTransaction) ([]*ledger.Transaction, []string, error) {
	transactions := make([]*ledger.Transaction, 0)
	externalAccountIds := make([]string, 0)
	for i, row := range rows {
		transaction, err := buildWebhookTransaction(row)
		if err != nil {
			return nil, nil, fmt.Errorf("transaction %d: %v", i, err)
		}
		transactions = append(transactions, transaction)
		externalAccountIds = append(externalAccountIds, row.AccountId)
	}
	return transactions, externalAccountIds, nil
}

//buildWebhookTransaction creates a ledger.Transaction from one webhook row
func buildWebhookTransaction(row webhookTransaction) (*ledger.Transaction, error) {
	if row.TransactionId == "" {
		return nil, errors.New("missing transaction_id")
	}
	if row.AccountId == "" {
		return nil, errors.New("missing account_id")
	}
	if row.Merchant == "" {
		return nil, errors.New("missing merchant")
	}
	postedOn, err := time.Parse("2006-01-02", row.PostedOn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse posted_on %s", row.PostedOn)
	}
	return &ledger.Transaction{
		ExternalId:  row.TransactionId,
		PostedOn:    postedOn,
		Amount:      row.Amount,
		Merchant:    row.Merchant,
		Description: row.Description,
		Category:    row.Category,
		Pending:     row.Pending,
	}, nil
}

//webhookAccountId resolves an institution account id to an account row id, creating a
//placeholder account when the institution pushes transactions for an account that has
//never appeared in a statement export
func webhookAccountId(bTx *ledger.BatchTransaction,
	accountIds map[string]int64,
	externalId string,
	now time.Time) (int64, error) {
	if id, present := accountIds[externalId]; present {
		return id, nil
	}
	var id int64
	statementString := bTx.Tx.Rebind("select id from account where external_id = ? limit 1")
	err := bTx.Tx.Get(&id, statementString, externalId)
	if errors.Is(err, sql.ErrNoRows) {
		account := &ledger.Account{
			ExternalId: externalId,
			Name:       externalId,
			Kind:       ledger.AccountKindChecking,
			Currency:   "USD",
			CreatedAt:  now,
		}
		err = ledger.SaveAccount(bTx.Tx, account)
		if err != nil {
			return 0, err
		}
		id = account.Id
	} else if err != nil {
		return 0, err
	}
	accountIds[externalId] = id
	return id, nil
}

/*
transact starts a Transaction on sqlx.DB, calls txFunc and commits or rolls back the transaction depending on the
return code of the txFunc result
*/
func transact(log *logger.Logger, db *sqlx.DB, txFunc func(*sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback() // err is non-nil; don't change it
			if rollbackErr != nil {
				log.Printf("Received error while attempting to rollback transaction. error:%v", rollbackErr)
			}
			return
		}
		err = tx.Commit() // err is nil; if Commit returns error update err
	}()
	err = txFunc(tx)
	return err
}
