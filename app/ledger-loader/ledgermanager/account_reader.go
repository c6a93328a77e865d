package ledgermanager

import (
	"database/sql"
	"errors"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
)

// accountRowReader implements statementRowReader interface for accounts.csv file.
// accounts are saved one at a time so their generated ids are available to the
// transaction rows that reference them
type accountRowReader struct {
	//idsByExternalId maps the institution's account identifier to our account.id
	idsByExternalId map[string]int64
}

func newAccountRowReader() *accountRowReader {
	return &accountRowReader{
		idsByExternalId: make(map[string]int64),
	}
}

// addRow upserts an account row. an account that was loaded by an earlier batch keeps
// its id and has its balance and limits refreshed
func (r *accountRowReader) addRow(parser *statementFileParser, bTx *ledger.BatchTransaction) error {
	account, err := buildAccount(parser)
	if err != nil {
		return err
	}
	existingId, err := findAccountId(bTx, account.ExternalId)
	if err != nil {
		return err
	}
	if existingId != 0 {
		account.Id = existingId
		now := time.Now()
		account.UpdatedAt = &now
	} else {
		account.CreatedAt = time.Now()
	}
	err = ledger.SaveAccount(bTx.Tx, account)
	if err != nil {
		return err
	}
	r.idsByExternalId[account.ExternalId] = account.Id
	return nil
}

// flush is a no-op, accounts are recorded as they are read
func (r *accountRowReader) flush(_ *ledger.BatchTransaction) error {
	return nil
}

// accountId returns the account.id for an institution account identifier, consulting
// rows read from this bundle first and falling back to the database.
// returns 0 when the account is unknown
func (r *accountRowReader) accountId(bTx *ledger.BatchTransaction, externalId string) (int64, error) {
	if id, present := r.idsByExternalId[externalId]; present {
		return id, nil
	}
	id, err := findAccountId(bTx, externalId)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		r.idsByExternalId[externalId] = id
	}
	return id, nil
}

// findAccountId looks up an account.id by institution identifier inside the load transaction.
// returns 0 when no account matches
func findAccountId(bTx *ledger.BatchTransaction, externalId string) (int64, error) {
	var id int64
	statementString := bTx.Tx.Rebind("select id from account where external_id = ? limit 1")
	err := bTx.Tx.Get(&id, statementString, externalId)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// buildAccount builds ledger.Account from parser
func buildAccount(parser *statementFileParser) (*ledger.Account, error) {
	externalId := parser.getString("account_id", false)
	name := parser.getString("name", false)
	institution := parser.getString("institution", true)
	kind := parser.getString("kind", true)
	currency := parser.getString("currency", true)
	balance := parser.getDecimal("balance", false)
	creditLimit := parser.getDecimalPointer("credit_limit", true)

	if err := parser.getError(); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = ledger.AccountKindChecking
	}
	if currency == "" {
		currency = "USD"
	}
	account := ledger.Account{
		ExternalId:  externalId,
		Name:        name,
		Institution: institution,
		Kind:        kind,
		Currency:    currency,
		Balance:     balance,
	}
	if creditLimit != nil {
		account.CreditLimit.Decimal = *creditLimit
		account.CreditLimit.Valid = true
	}
	return &account, nil
}
