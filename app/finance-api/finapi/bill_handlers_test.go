package finapi

import (
	"reflect"
	"testing"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_buildBill(t *testing.T) {
	checking := int64(12)
	tests := []struct {
		name    string
		request billRequest
		want    *ledger.Bill
		wantErr bool
	}{
		{
			name: "full request",
			request: billRequest{
				AccountId:      &checking,
				Name:           "Rent",
				Merchant:       "Oak Street Properties",
				Amount:         decimal.RequireFromString("1850.00"),
				DueDay:         1,
				IntervalMonths: 1,
				FirstDueOn:     "2024-01-01",
				LeadDays:       3,
			},
			want: &ledger.Bill{
				AccountId:      &checking,
				Name:           "Rent",
				Merchant:       "Oak Street Properties",
				Amount:         decimal.RequireFromString("1850.00"),
				DueDay:         1,
				IntervalMonths: 1,
				FirstDueOn:     getTestDate("2024-01-01"),
				LeadDays:       3,
				Active:         true,
			},
		},
		{
			name: "interval defaults to monthly",
			request: billRequest{
				Name:     "Streaming",
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("15.49"),
				DueDay:   6,
				AutoPay:  true,
			},
			want: &ledger.Bill{
				Name:           "Streaming",
				Merchant:       "NETFLIX.COM",
				Amount:         decimal.RequireFromString("15.49"),
				DueDay:         6,
				IntervalMonths: 1,
				AutoPay:        true,
				Active:         true,
			},
		},
		{
			name: "missing name",
			request: billRequest{
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("15.49"),
				DueDay:   6,
			},
			wantErr: true,
		},
		{
			name: "missing merchant",
			request: billRequest{
				Name:   "Streaming",
				Amount: decimal.RequireFromString("15.49"),
				DueDay: 6,
			},
			wantErr: true,
		},
		{
			name: "negative amount",
			request: billRequest{
				Name:     "Streaming",
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("-15.49"),
				DueDay:   6,
			},
			wantErr: true,
		},
		{
			name: "due_day outside the month",
			request: billRequest{
				Name:     "Streaming",
				Merchant: "NETFLIX.COM",
				Amount:   decimal.RequireFromString("15.49"),
				DueDay:   32,
			},
			wantErr: true,
		},
		{
			name: "unparseable first_due_on",
			request: billRequest{
				Name:       "Streaming",
				Merchant:   "NETFLIX.COM",
				Amount:     decimal.RequireFromString("15.49"),
				DueDay:     6,
				FirstDueOn: "01/06/2024",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildBill(tt.request)
			if (err != nil) != tt.wantErr {
				t.Errorf("buildBill() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildBill() got = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_upcomingBill(t *testing.T) {
	cfg := bizday.ConfigForYears(2023, 2025)
	bill := &ledger.Bill{
		Id:             4,
		Name:           "Auto insurance",
		Merchant:       "Acme Mutual",
		Amount:         decimal.RequireFromString("112.40"),
		DueDay:         15,
		IntervalMonths: 1,
		FirstDueOn:     getTestDate("2024-01-01"),
		LeadDays:       2,
	}
	got := upcomingBill(bill, getTestDate("2024-01-10"), cfg)
	//the 15th is a holiday, the bill is payable the next business day
	if !got.DueOn.Equal(getTestDate("2024-01-16")) {
		t.Errorf("upcomingBill() DueOn = %v, want 2024-01-16", got.DueOn)
	}
	if !got.RemindOn.Equal(getTestDate("2024-01-11")) {
		t.Errorf("upcomingBill() RemindOn = %v, want 2024-01-11", got.RemindOn)
	}
	if got.BusinessDaysLeft != 3 {
		t.Errorf("upcomingBill() BusinessDaysLeft = %d, want 3", got.BusinessDaysLeft)
	}
	if got.Id != 4 {
		t.Errorf("upcomingBill() bill id = %d, want 4", got.Id)
	}
}
