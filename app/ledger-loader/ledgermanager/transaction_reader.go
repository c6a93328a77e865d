package ledgermanager

import (
	"fmt"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
)

// batchedTransactionCount is how many transaction rows are collected before they are recorded
const batchedTransactionCount = 250

// transactionRowReader implements statementRowReader interface for transactions.csv file.
// rows are collected and recorded in batches of batchedTransactionCount
type transactionRowReader struct {
	accountRR *accountRowReader
	batched   []*ledger.Transaction
	recorded  int
}

func newTransactionRowReader(accountRR *accountRowReader) *transactionRowReader {
	return &transactionRowReader{
		accountRR: accountRR,
	}
}

// addRow builds a transaction, resolves the account it belongs to and queues it for
// the next flush
func (r *transactionRowReader) addRow(parser *statementFileParser, bTx *ledger.BatchTransaction) error {
	transaction, externalAccountId, err := buildTransaction(parser)
	if err != nil {
		return err
	}
	accountId, err := r.accountRR.accountId(bTx, externalAccountId)
	if err != nil {
		return err
	}
	if accountId == 0 {
		//bundle had no accounts.csv row for this account, make a placeholder that can be
		//renamed later so the transaction history isn't lost
		accountId, err = r.createPlaceholderAccount(bTx, externalAccountId)
		if err != nil {
			return err
		}
	}
	transaction.AccountId = accountId
	r.batched = append(r.batched, transaction)
	if len(r.batched) >= batchedTransactionCount {
		return r.flush(bTx)
	}
	return nil
}

// flush records all batched transactions
func (r *transactionRowReader) flush(bTx *ledger.BatchTransaction) error {
	if len(r.batched) == 0 {
		return nil
	}
	err := ledger.RecordTransactions(r.batched, bTx)
	if err != nil {
		return fmt.Errorf("unable to record transactions: %w", err)
	}
	r.recorded += len(r.batched)
	r.batched = r.batched[:0]
	return nil
}

// createPlaceholderAccount saves a minimal account for an institution identifier that
// appeared in transactions.csv only
func (r *transactionRowReader) createPlaceholderAccount(bTx *ledger.BatchTransaction, externalId string) (int64, error) {
	account := ledger.Account{
		ExternalId: externalId,
		Name:       externalId,
		Kind:       ledger.AccountKindChecking,
		Currency:   "USD",
		CreatedAt:  time.Now(),
	}
	err := ledger.SaveAccount(bTx.Tx, &account)
	if err != nil {
		return 0, fmt.Errorf("unable to create placeholder account for %s: %w", externalId, err)
	}
	r.accountRR.idsByExternalId[externalId] = account.Id
	return account.Id, nil
}

// buildTransaction builds ledger.Transaction from parser, returning the institution's
// account identifier alongside it
func buildTransaction(parser *statementFileParser) (*ledger.Transaction, string, error) {
	externalId := parser.getString("transaction_id", false)
	externalAccountId := parser.getString("account_id", false)
	postedOn := parser.getDate("posted_on", false)
	amount := parser.getDecimal("amount", false)
	merchant := parser.getString("merchant", false)
	description := parser.getStringPointer("description", true)
	category := parser.getString("category", true)
	pending := parser.getBool("pending", true)

	if err := parser.getError(); err != nil {
		return nil, "", err
	}
	return &ledger.Transaction{
		ExternalId:  externalId,
		PostedOn:    postedOn,
		Amount:      amount,
		Merchant:    merchant,
		Description: description,
		Category:    category,
		Pending:     pending,
	}, externalAccountId, nil
}
