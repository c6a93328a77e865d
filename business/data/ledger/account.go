package ledger

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	AccountKindChecking = "checking"
	AccountKindSavings  = "savings"
	AccountKindCredit   = "credit"
)

// Account is a bank or card account transactions are tracked against.
// Balance on a credit account is the amount currently owed, a positive number,
// and CreditLimit is set so utilization can be evaluated against it.
type Account struct {
	Id          int64               `db:"id" json:"id"`
	ExternalId  string              `db:"external_id" json:"external_id"`
	Name        string              `db:"name" json:"name"`
	Institution string              `db:"institution" json:"institution"`
	Kind        string              `db:"kind" json:"kind"`
	Currency    string              `db:"currency" json:"currency"`
	Balance     decimal.Decimal     `db:"balance" json:"balance"`
	CreditLimit decimal.NullDecimal `db:"credit_limit" json:"credit_limit"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time          `db:"updated_at" json:"updated_at"`
}

// Utilization returns the percent of the credit limit currently in use, and false
// when the account has no usable credit limit to measure against
func (a *Account) Utilization() (decimal.Decimal, bool) {
	if a.Kind != AccountKindCredit || !a.CreditLimit.Valid || !a.CreditLimit.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return a.Balance.Div(a.CreditLimit.Decimal).Mul(decimal.NewFromInt(100)).Round(2), true
}

// SaveAccount saves new or updates existing Accounts. Existing records are determined
// by a non-zero Account.Id
func SaveAccount(tx *sqlx.Tx, account *Account) error {
	statementString := "insert into account ( " +
		"external_id, " +
		"name, " +
		"institution, " +
		"kind, " +
		"currency, " +
		"balance, " +
		"credit_limit, " +
		"created_at, " +
		"updated_at) " +
		"values (" +
		":external_id, " +
		":name, " +
		":institution, " +
		":kind, " +
		":currency, " +
		":balance, " +
		":credit_limit, " +
		":created_at, " +
		":updated_at)"
	if account.Id != 0 {
		statementString = "update account set " +
			"external_id = :external_id, " +
			"name = :name, " +
			"institution = :institution, " +
			"kind = :kind, " +
			"currency = :currency, " +
			"balance = :balance, " +
			"credit_limit = :credit_limit, " +
			"updated_at = :updated_at " +
			" where id = :id"
	}
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, account)
	if err != nil {
		return err
	}
	if account.Id == 0 {
		statementString = tx.Rebind("SELECT id FROM account where external_id = ? limit 1")
		err = tx.Get(&account.Id, statementString, account.ExternalId)
	}
	return err
}

// GetAccount retrieves Account with accountId
func GetAccount(db *sqlx.DB, accountId int64) (*Account, error) {
	query := "select * from account where id = $1"
	account := Account{}
	err := db.Get(&account, db.Rebind(query), accountId)
	return &account, err
}

// GetAllAccounts retrieves all Accounts
func GetAllAccounts(db *sqlx.DB) ([]Account, error) {
	query := "select * from account order by name"
	var results []Account
	err := db.Select(&results, query)
	return results, err
}

// GetCreditAccounts retrieves the accounts a credit utilization check applies to
func GetCreditAccounts(db *sqlx.DB) ([]Account, error) {
	query := "select * from account where kind = $1 and credit_limit is not null order by name"
	var results []Account
	err := db.Select(&results, db.Rebind(query), AccountKindCredit)
	return results, err
}
