package reminder

import (
	"testing"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_reminderWindow(t *testing.T) {
	calendar := bizday.ConfigForYears(2023, 2025)
	//the fifteenth of January 2024 is the MLK holiday, so the bill lands on Tuesday the
	//sixteenth and three business days of lead time reaches back to Wednesday the tenth
	bill := ledger.Bill{
		Id:             4,
		Name:           "Mortgage",
		Merchant:       "First Federal Mortgage",
		Amount:         decimal.RequireFromString("1850.00"),
		DueDay:         15,
		IntervalMonths: 1,
		FirstDueOn:     getTestDate("2023-01-15"),
		LeadDays:       3,
		Active:         true,
	}
	conf := Conf{
		ReminderHorizonDays: 30,
		PaymentWindowDays:   5,
	}
	tests := []struct {
		name         string
		bill         ledger.Bill
		now          time.Time
		conf         Conf
		wantDue      time.Time
		wantRemindOn time.Time
		wantInWindow bool
	}{
		{
			name:         "on reminder day",
			bill:         bill,
			now:          getTestDate("2024-01-10"),
			conf:         conf,
			wantDue:      getTestDate("2024-01-16"),
			wantRemindOn: getTestDate("2024-01-10"),
			wantInWindow: true,
		},
		{
			name:         "between reminder day and due date",
			bill:         bill,
			now:          getTestDate("2024-01-12"),
			conf:         conf,
			wantDue:      getTestDate("2024-01-16"),
			wantRemindOn: getTestDate("2024-01-10"),
			wantInWindow: true,
		},
		{
			name:         "before reminder day",
			bill:         bill,
			now:          getTestDate("2024-01-08"),
			conf:         conf,
			wantDue:      getTestDate("2024-01-16"),
			wantRemindOn: getTestDate("2024-01-10"),
			wantInWindow: false,
		},
		{
			name: "due date beyond horizon",
			bill: bill,
			now:  getTestDate("2024-01-10"),
			conf: Conf{
				ReminderHorizonDays: 3,
				PaymentWindowDays:   5,
			},
			wantDue:      getTestDate("2024-01-16"),
			wantRemindOn: getTestDate("2024-01-10"),
			wantInWindow: false,
		},
		{
			name: "recently paid",
			bill: ledger.Bill{
				Id:             4,
				Name:           "Mortgage",
				Merchant:       "First Federal Mortgage",
				Amount:         decimal.RequireFromString("1850.00"),
				DueDay:         15,
				IntervalMonths: 1,
				FirstDueOn:     getTestDate("2023-01-15"),
				LeadDays:       3,
				Active:         true,
				LastPaidOn:     getTestDatePointer("2024-01-14"),
			},
			now:          getTestDate("2024-01-10"),
			conf:         conf,
			wantDue:      getTestDate("2024-01-16"),
			wantRemindOn: getTestDate("2024-01-10"),
			wantInWindow: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDue, gotRemindOn, gotInWindow := reminderWindow(&tt.bill, tt.now, calendar, tt.conf)
			if !gotDue.Equal(tt.wantDue) {
				t.Errorf("reminderWindow() due = %v, want %v", gotDue, tt.wantDue)
			}
			if !gotRemindOn.Equal(tt.wantRemindOn) {
				t.Errorf("reminderWindow() remindOn = %v, want %v", gotRemindOn, tt.wantRemindOn)
			}
			if gotInWindow != tt.wantInWindow {
				t.Errorf("reminderWindow() inWindow = %v, want %v", gotInWindow, tt.wantInWindow)
			}
		})
	}
}

func Test_reminderSeverity(t *testing.T) {
	tests := []struct {
		name             string
		businessDaysLeft int
		want             string
	}{
		{
			name:             "due today",
			businessDaysLeft: 0,
			want:             ledger.AlertSeverityCritical,
		},
		{
			name:             "one business day left",
			businessDaysLeft: 1,
			want:             ledger.AlertSeverityCritical,
		},
		{
			name:             "two business days left",
			businessDaysLeft: 2,
			want:             ledger.AlertSeverityWarn,
		},
		{
			name:             "comfortable lead",
			businessDaysLeft: 5,
			want:             ledger.AlertSeverityWarn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reminderSeverity(tt.businessDaysLeft); got != tt.want {
				t.Errorf("reminderSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}
