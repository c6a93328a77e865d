package reminder

import (
	"testing"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

func Test_utilizationLevel(t *testing.T) {
	warn := decimal.NewFromInt(30)
	critical := decimal.NewFromInt(80)
	tests := []struct {
		name          string
		utilization   decimal.Decimal
		wantSeverity  string
		wantThreshold decimal.Decimal
		wantCrossed   bool
	}{
		{
			name:        "below warn",
			utilization: decimal.RequireFromString("29.99"),
			wantCrossed: false,
		},
		{
			name:          "exactly at warn",
			utilization:   decimal.NewFromInt(30),
			wantSeverity:  ledger.AlertSeverityWarn,
			wantThreshold: warn,
			wantCrossed:   true,
		},
		{
			name:          "between thresholds",
			utilization:   decimal.RequireFromString("45.50"),
			wantSeverity:  ledger.AlertSeverityWarn,
			wantThreshold: warn,
			wantCrossed:   true,
		},
		{
			name:          "exactly at critical",
			utilization:   decimal.NewFromInt(80),
			wantSeverity:  ledger.AlertSeverityCritical,
			wantThreshold: critical,
			wantCrossed:   true,
		},
		{
			name:          "over the limit",
			utilization:   decimal.RequireFromString("104.25"),
			wantSeverity:  ledger.AlertSeverityCritical,
			wantThreshold: critical,
			wantCrossed:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSeverity, gotThreshold, gotCrossed := utilizationLevel(tt.utilization, warn, critical)
			if gotCrossed != tt.wantCrossed {
				t.Errorf("utilizationLevel() crossed = %v, want %v", gotCrossed, tt.wantCrossed)
			}
			if !tt.wantCrossed {
				return
			}
			if gotSeverity != tt.wantSeverity {
				t.Errorf("utilizationLevel() severity = %v, want %v", gotSeverity, tt.wantSeverity)
			}
			if !gotThreshold.Equal(tt.wantThreshold) {
				t.Errorf("utilizationLevel() threshold = %v, want %v", gotThreshold, tt.wantThreshold)
			}
		})
	}
}

func Test_utilizationMessage(t *testing.T) {
	got := utilizationMessage("Travel Card", decimal.RequireFromString("45.5"))
	want := "Travel Card is at 45.5% of its credit limit"
	if got != want {
		t.Errorf("utilizationMessage() = %v, want %v", got, want)
	}
}
