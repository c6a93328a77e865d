package reminder

import (
	"testing"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_paymentProcessor_matchesBill(t *testing.T) {
	calendar := bizday.ConfigForYears(2023, 2025)
	testLog := makeTestLogWriter()
	processor := makePaymentProcessor(testLog.log, nil, calendar, Conf{
		PaymentTolerancePercent: 10,
		PaymentWindowDays:       5,
	})
	bill := ledger.Bill{
		Id:             9,
		Name:           "Netflix",
		Merchant:       "NETFLIX.COM",
		Amount:         decimal.RequireFromString("15.49"),
		DueDay:         5,
		IntervalMonths: 1,
		FirstDueOn:     getTestDate("2024-01-05"),
		Active:         true,
	}
	tests := []struct {
		name        string
		transaction ledger.Transaction
		bill        ledger.Bill
		want        bool
	}{
		{
			name: "payment on the due date",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM 866-579-7172",
				Amount:   decimal.RequireFromString("-15.49"),
				PostedOn: getTestDate("2024-02-05"),
			},
			bill: bill,
			want: true,
		},
		{
			name: "price increase within tolerance",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-16.49"),
				PostedOn: getTestDate("2024-02-05"),
			},
			bill: bill,
			want: true,
		},
		{
			name: "amount out of tolerance",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-25.00"),
				PostedOn: getTestDate("2024-02-05"),
			},
			bill: bill,
			want: false,
		},
		{
			name: "different merchant",
			transaction: ledger.Transaction{
				Merchant: "HULU",
				Amount:   decimal.RequireFromString("-15.49"),
				PostedOn: getTestDate("2024-02-05"),
			},
			bill: bill,
			want: false,
		},
		{
			name: "posted too far from a due date",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-15.49"),
				PostedOn: getTestDate("2024-02-15"),
			},
			bill: bill,
			want: false,
		},
		{
			name: "payment a few days early",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-15.49"),
				PostedOn: getTestDate("2024-02-02"),
			},
			bill: bill,
			want: true,
		},
		{
			name: "already paid this cycle",
			transaction: ledger.Transaction{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-15.49"),
				PostedOn: getTestDate("2024-02-05"),
			},
			bill: ledger.Bill{
				Id:             9,
				Name:           "Netflix",
				Merchant:       "NETFLIX.COM",
				Amount:         decimal.RequireFromString("15.49"),
				DueDay:         5,
				IntervalMonths: 1,
				FirstDueOn:     getTestDate("2024-01-05"),
				Active:         true,
				LastPaidOn:     getTestDatePointer("2024-02-03"),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processor.matchesBill(&tt.transaction, &tt.bill); got != tt.want {
				t.Errorf("matchesBill() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_makePaymentProcessor_tolerance(t *testing.T) {
	testLog := makeTestLogWriter()
	processor := makePaymentProcessor(testLog.log, nil, bizday.DefaultConfig(), Conf{
		PaymentTolerancePercent: 10,
		PaymentWindowDays:       5,
	})
	if !processor.tolerance.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("makePaymentProcessor() tolerance = %v, want 0.1", processor.tolerance)
	}
	if processor.windowDays != 5 {
		t.Errorf("makePaymentProcessor() windowDays = %v, want 5", processor.windowDays)
	}
}
