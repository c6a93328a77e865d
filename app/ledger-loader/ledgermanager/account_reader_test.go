package ledgermanager

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_buildAccount(t *testing.T) {
	tests := []struct {
		name       string
		csvContent string
		wantErr    bool
		want       *ledger.Account
	}{
		{
			name: "accounts.csv no errors",
			csvContent: "account_id,name,institution,kind,currency,balance,credit_limit\n" +
				"chk-001,Everyday Checking,First Federal,checking,USD,5210.75,\n",
			wantErr: false,
			want: &ledger.Account{
				ExternalId:  "chk-001",
				Name:        "Everyday Checking",
				Institution: "First Federal",
				Kind:        "checking",
				Currency:    "USD",
				Balance:     decimal.RequireFromString("5210.75"),
			},
		},
		{
			name: "credit account with limit",
			csvContent: "account_id,name,institution,kind,currency,balance,credit_limit\n" +
				"cc-009,Travel Card,First Federal,credit,USD,1480.12,5000\n",
			wantErr: false,
			want: &ledger.Account{
				ExternalId:  "cc-009",
				Name:        "Travel Card",
				Institution: "First Federal",
				Kind:        "credit",
				Currency:    "USD",
				Balance:     decimal.RequireFromString("1480.12"),
				CreditLimit: decimal.NullDecimal{
					Decimal: decimal.RequireFromString("5000"),
					Valid:   true,
				},
			},
		},
		{
			name: "missing optional columns take defaults",
			csvContent: "account_id,name,balance\n" +
				"sav-002,Rainy Day,880\n",
			wantErr: false,
			want: &ledger.Account{
				ExternalId: "sav-002",
				Name:       "Rainy Day",
				Kind:       ledger.AccountKindChecking,
				Currency:   "USD",
				Balance:    decimal.RequireFromString("880"),
			},
		},
		{
			name: "error, missing balance value",
			csvContent: "account_id,name,institution,kind,currency,balance,credit_limit\n" +
				"chk-001,Everyday Checking,First Federal,checking,USD,,\n",
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
			got, err := buildAccount(parser)
			if tt.wantErr {
				if err == nil {
					t.Errorf("%v: buildAccount() produced no error, but we want one", tt.name)
					return
				}
				return
			} else if err != nil {
				t.Errorf("%v: buildAccount() error = %v, wantErr %v", tt.name, err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildAccount() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}
