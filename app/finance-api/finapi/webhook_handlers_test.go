package finapi

import (
	"reflect"
	"testing"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func getTestDate(str string) time.Time {
	date, err := time.Parse("2006-01-02", str)
	if err != nil {
		panic(err)
	}
	return date
}

func Test_buildWebhookTransaction(t *testing.T) {
	coffee := "card purchase"
	tests := []struct {
		name    string
		row     webhookTransaction
		want    *ledger.Transaction
		wantErr bool
	}{
		{
			name: "full row",
			row: webhookTransaction{
				TransactionId: "tx-501",
				AccountId:     "chk-001",
				PostedOn:      "2024-02-05",
				Amount:        decimal.RequireFromString("-4.50"),
				Merchant:      "Corner Coffee",
				Description:   &coffee,
				Category:      "dining",
			},
			want: &ledger.Transaction{
				ExternalId:  "tx-501",
				PostedOn:    getTestDate("2024-02-05"),
				Amount:      decimal.RequireFromString("-4.50"),
				Merchant:    "Corner Coffee",
				Description: &coffee,
				Category:    "dining",
			},
		},
		{
			name: "pending row without optional fields",
			row: webhookTransaction{
				TransactionId: "tx-502",
				AccountId:     "chk-001",
				PostedOn:      "2024-02-06",
				Amount:        decimal.RequireFromString("2400.00"),
				Merchant:      "ACME PAYROLL",
				Pending:       true,
			},
			want: &ledger.Transaction{
				ExternalId: "tx-502",
				PostedOn:   getTestDate("2024-02-06"),
				Amount:     decimal.RequireFromString("2400.00"),
				Merchant:   "ACME PAYROLL",
				Pending:    true,
			},
		},
		{
			name: "missing transaction_id",
			row: webhookTransaction{
				AccountId: "chk-001",
				PostedOn:  "2024-02-05",
				Amount:    decimal.RequireFromString("-4.50"),
				Merchant:  "Corner Coffee",
			},
			wantErr: true,
		},
		{
			name: "missing merchant",
			row: webhookTransaction{
				TransactionId: "tx-501",
				AccountId:     "chk-001",
				PostedOn:      "2024-02-05",
				Amount:        decimal.RequireFromString("-4.50"),
			},
			wantErr: true,
		},
		{
			name: "unparseable posted_on",
			row: webhookTransaction{
				TransactionId: "tx-501",
				AccountId:     "chk-001",
				PostedOn:      "02/05/2024",
				Amount:        decimal.RequireFromString("-4.50"),
				Merchant:      "Corner Coffee",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildWebhookTransaction(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("buildWebhookTransaction() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildWebhookTransaction() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_buildWebhookTransactions(t *testing.T) {
	rows := []webhookTransaction{
		{
			TransactionId: "tx-501",
			AccountId:     "chk-001",
			PostedOn:      "2024-02-05",
			Amount:        decimal.RequireFromString("-4.50"),
			Merchant:      "Corner Coffee",
		},
		{
			TransactionId: "tx-502",
			AccountId:     "cc-009",
			PostedOn:      "2024-02-06",
			Amount:        decimal.RequireFromString("-15.49"),
			Merchant:      "NETFLIX.COM",
		},
	}
	transactions, externalAccountIds, err := buildWebhookTransactions(rows)
	if err != nil {
		t.Errorf("buildWebhookTransactions() unexpected error = %v", err)
		return
	}
	if len(transactions) != 2 {
		t.Errorf("buildWebhookTransactions() built %d transactions, want 2", len(transactions))
	}
	if !reflect.DeepEqual(externalAccountIds, []string{"chk-001", "cc-009"}) {
		t.Errorf("buildWebhookTransactions() external account ids = %v, want [chk-001 cc-009]", externalAccountIds)
	}

	rows[1].PostedOn = "not-a-date"
	_, _, err = buildWebhookTransactions(rows)
	if err == nil {
		t.Errorf("buildWebhookTransactions() expected error for unparseable row")
	}
}
