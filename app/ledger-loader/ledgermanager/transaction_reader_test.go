package ledgermanager

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_buildTransaction(t *testing.T) {
	coffee := "card purchase"
	tests := []struct {
		name            string
		csvContent      string
		wantErr         bool
		want            *ledger.Transaction
		wantExternalAcc string
	}{
		{
			name: "transactions.csv no errors",
			csvContent: "transaction_id,account_id,posted_on,amount,merchant,description,category,pending\n" +
				"tx-77,chk-001,2024-01-05,-4.50,Corner Coffee,card purchase,dining,false\n",
			wantErr: false,
			want: &ledger.Transaction{
				ExternalId:  "tx-77",
				PostedOn:    getTestDate("2024-01-05"),
				Amount:      decimal.RequireFromString("-4.50"),
				Merchant:    "Corner Coffee",
				Description: &coffee,
				Category:    "dining",
				Pending:     false,
			},
			wantExternalAcc: "chk-001",
		},
		{
			name: "pending deposit without optional columns",
			csvContent: "transaction_id,account_id,posted_on,amount,merchant,pending\n" +
				"tx-78,chk-001,2024-01-12,2450.00,Acme Payroll,true\n",
			wantErr: false,
			want: &ledger.Transaction{
				ExternalId: "tx-78",
				PostedOn:   getTestDate("2024-01-12"),
				Amount:     decimal.RequireFromString("2450.00"),
				Merchant:   "Acme Payroll",
				Pending:    true,
			},
			wantExternalAcc: "chk-001",
		},
		{
			name: "error, missing posted_on value",
			csvContent: "transaction_id,account_id,posted_on,amount,merchant,description,category,pending\n" +
				"tx-77,chk-001,,-4.50,Corner Coffee,card purchase,dining,false\n",
			wantErr: true,
		},
		{
			name: "error, unparseable amount",
			csvContent: "transaction_id,account_id,posted_on,amount,merchant,description,category,pending\n" +
				"tx-77,chk-001,2024-01-05,$4.50,Corner Coffee,card purchase,dining,false\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := makeStatementFileParser(strings.NewReader(tt.csvContent), "test.csv")
			if err != nil {
				t.Errorf("Unable to make statementFileParser %s", err)
			}
			err = parser.nextLine()
			if err != nil {
				t.Errorf("Unable to move statementFileParser to first line %s", err)
			}
			got, gotExternalAcc, err := buildTransaction(parser)
			if tt.wantErr {
				if err == nil {
					t.Errorf("%v: buildTransaction() produced no error, but we want one", tt.name)
					return
				}
				return
			} else if err != nil {
				t.Errorf("%v: buildTransaction() error = %v, wantErr %v", tt.name, err, tt.wantErr)
				return
			}
			if gotExternalAcc != tt.wantExternalAcc {
				t.Errorf("buildTransaction() account = %v, want %v", gotExternalAcc, tt.wantExternalAcc)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildTransaction() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}
