package ledger

import (
	"fmt"
	"time"

	"github.com/fincast/fincast/foundation/database"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Transaction contains one posted or pending ledger row from a statement export or webhook.
// Amounts are signed, money leaving the account is negative.
type Transaction struct {
	Id            int64           `db:"id" json:"id"`
	ImportBatchId int64           `db:"import_batch_id" json:"import_batch_id"`
	AccountId     int64           `db:"account_id" json:"account_id"`
	ExternalId    string          `db:"external_id" json:"external_id"`
	PostedOn      time.Time       `db:"posted_on" json:"posted_on"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Merchant      string          `db:"merchant" json:"merchant"`
	Description   *string         `db:"description" json:"description"`
	Category      string          `db:"category" json:"category"`
	Pending       bool            `db:"pending" json:"pending"`
}

// IsExpense returns true when the transaction moved money out of the account
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// TransactionEvent is the payload published on the transaction subject whenever a
// batch of transactions lands, from the loader or from a webhook
type TransactionEvent struct {
	Source        string        `json:"source"`
	ImportBatchId int64         `json:"import_batch_id"`
	ReceivedAt    time.Time     `json:"received_at"`
	Transactions  []Transaction `json:"transactions"`
}

// RecordTransactions saves transactions to database in batch
func RecordTransactions(transactions []*Transaction, bTx *BatchTransaction) error {
	if len(transactions) == 0 {
		return nil
	}
	for _, transaction := range transactions {
		transaction.ImportBatchId = bTx.Batch.Id
	}
	statementString := "insert into transaction ( " +
		"import_batch_id, " +
		"account_id, " +
		"external_id, " +
		"posted_on, " +
		"amount, " +
		"merchant, " +
		"description, " +
		"category, " +
		"pending) " +
		"values (" +
		":import_batch_id, " +
		":account_id, " +
		":external_id, " +
		":posted_on, " +
		":amount, " +
		":merchant, " +
		":description, " +
		":category, " +
		":pending)"
	statementString = bTx.Tx.Rebind(statementString)
	_, err := bTx.Tx.NamedExec(statementString, transactions)
	return err
}

// GetTransactionsBetween retrieves transactions posted after from, up to and including to,
// ordered by posted date
func GetTransactionsBetween(db *sqlx.DB, from time.Time, to time.Time) ([]Transaction, error) {
	query := "select * from transaction where posted_on > $1 and posted_on <= $2 order by posted_on, id"
	var results []Transaction
	err := db.Select(&results, db.Rebind(query), from, to)
	return results, err
}

// GetTransactionsForAccountsBetween retrieves transactions for accountIds posted after from,
// up to and including to, ordered by posted date
func GetTransactionsForAccountsBetween(db *sqlx.DB,
	accountIds []int64,
	from time.Time,
	to time.Time) ([]Transaction, error) {
	if len(accountIds) < 1 {
		return nil, nil
	}
	query := "select * from transaction where account_id in (:account_ids) " +
		"and posted_on > :from and posted_on <= :to order by posted_on, id"
	query, args, err := database.PrepareNamedQueryFromMap(query, db, map[string]interface{}{
		"account_ids": accountIds,
		"from":        from,
		"to":          to,
	})
	if err != nil {
		return nil, err
	}
	var results []Transaction
	err = db.Select(&results, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve transactions for accounts. query:%s error: %w", query, err)
	}
	return results, nil
}

// MonthlySummary is one month of spending in one category
type MonthlySummary struct {
	Month    time.Time       `db:"month" json:"month"`
	Category string          `db:"category" json:"category"`
	Total    decimal.Decimal `db:"total" json:"total"`
	Count    int             `db:"count" json:"count"`
}

// GetMonthlySummaries aggregates posted expense transactions by month and category since the
// date provided
func GetMonthlySummaries(db *sqlx.DB, since time.Time) ([]MonthlySummary, error) {
	query := "select date_trunc('month', posted_on) as month, category, " +
		"sum(amount) as total, count(*) as count " +
		"from transaction " +
		"where posted_on >= $1 and pending = false and amount < 0 " +
		"group by date_trunc('month', posted_on), category " +
		"order by month, category"
	var results []MonthlySummary
	err := db.Select(&results, db.Rebind(query), since)
	return results, err
}
