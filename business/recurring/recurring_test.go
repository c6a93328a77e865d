package recurring

import (
	"testing"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/matryer/is"
	"github.com/shopspring/decimal"
)

func getTestDate(str string) time.Time {
	result, _ := time.Parse("20060102", str)
	return result
}

func expenseOn(date string, amount string, merchant string) ledger.Transaction {
	return ledger.Transaction{
		PostedOn: getTestDate(date),
		Amount:   decimal.RequireFromString(amount),
		Merchant: merchant,
	}
}

func TestNormalizeMerchant(t *testing.T) {
	type args struct {
		merchant string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "store number is dropped",
			args: args{merchant: "NETFLIX.COM 0881234"},
			want: "NETFLIX COM",
		},
		{
			name: "case is folded",
			args: args{merchant: "Spotify USA"},
			want: "SPOTIFY USA",
		},
		{
			name: "reference fragment is dropped",
			args: args{merchant: "CITY OF PORTLAND #42"},
			want: "CITY OF PORTLAND",
		},
		{
			name: "digits only reduces to nothing",
			args: args{merchant: "123456"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMerchant(tt.args.merchant); got != tt.want {
				t.Errorf("NormalizeMerchant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_monthlyPattern(t *testing.T) {
	is := is.New(t)
	cfg := bizday.Config{Weekend: bizday.DefaultWeekend}
	transactions := []ledger.Transaction{
		expenseOn("20240105", "-15.49", "NETFLIX.COM 0881234"),
		expenseOn("20240205", "-15.49", "NETFLIX.COM 0899911"),
		expenseOn("20240305", "-16.49", "NETFLIX.COM 0812077"), //price bump inside tolerance
		expenseOn("20240405", "-15.49", "NETFLIX.COM 0881234"),
	}

	candidates := Detect(transactions, DefaultOptions(), cfg)
	is.Equal(len(candidates), 1)

	candidate := candidates[0]
	is.Equal(candidate.MerchantKey, "NETFLIX COM")
	is.Equal(candidate.Cadence, CadenceMonthly)
	is.Equal(candidate.Occurrences, 4)
	is.True(candidate.FirstSeen.Equal(getTestDate("20240105")))
	is.True(candidate.LastSeen.Equal(getTestDate("20240405")))
	is.Equal(candidate.Score, 1.0)
	is.True(candidate.Amount.Equal(decimal.RequireFromString("15.49")))
	//thirty days past April 5th is a Sunday, the expected charge moves to Monday
	is.True(candidate.NextExpected.Equal(getTestDate("20240506")))
}

func TestDetect_weeklyPattern(t *testing.T) {
	is := is.New(t)
	cfg := bizday.Config{Weekend: bizday.DefaultWeekend}
	transactions := []ledger.Transaction{
		expenseOn("20240101", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240108", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240115", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240122", "-25.00", "IRON WORKS GYM"),
	}

	candidates := Detect(transactions, DefaultOptions(), cfg)
	is.Equal(len(candidates), 1)
	is.Equal(candidates[0].Cadence, CadenceWeekly)
	is.Equal(candidates[0].IntervalDays, 7)
	is.True(candidates[0].NextExpected.Equal(getTestDate("20240129")))
}

func TestDetect_filtersAndNoise(t *testing.T) {
	is := is.New(t)
	cfg := bizday.Config{Weekend: bizday.DefaultWeekend}
	pending := expenseOn("20240505", "-15.49", "NETFLIX.COM 0881234")
	pending.Pending = true
	transactions := []ledger.Transaction{
		expenseOn("20240105", "-15.49", "NETFLIX.COM 0881234"),
		expenseOn("20240205", "-15.49", "NETFLIX.COM 0899911"),
		expenseOn("20240305", "-15.49", "NETFLIX.COM 0812077"),
		expenseOn("20240405", "-15.49", "NETFLIX.COM 0881234"),
		//a one off purchase from the same merchant lands in its own amount cluster
		expenseOn("20240210", "-120.00", "NETFLIX.COM SHOP"),
		//deposits are not patterns
		expenseOn("20240115", "2400.00", "EMPLOYER PAYROLL"),
		expenseOn("20240215", "2400.00", "EMPLOYER PAYROLL"),
		expenseOn("20240315", "2400.00", "EMPLOYER PAYROLL"),
		//pending rows are not counted
		pending,
		//sporadic spending never fits a cadence
		expenseOn("20240102", "-34.10", "CORNER MARKET"),
		expenseOn("20240121", "-33.95", "CORNER MARKET"),
		expenseOn("20240126", "-34.40", "CORNER MARKET"),
	}

	candidates := Detect(transactions, DefaultOptions(), cfg)
	is.Equal(len(candidates), 1)
	is.Equal(candidates[0].MerchantKey, "NETFLIX COM")
	is.Equal(candidates[0].Occurrences, 4)
}

func TestDetect_ordersByScore(t *testing.T) {
	is := is.New(t)
	cfg := bizday.Config{Weekend: bizday.DefaultWeekend}
	transactions := []ledger.Transaction{
		//steady weekly charges, every gap on cadence
		expenseOn("20240101", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240108", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240115", "-25.00", "IRON WORKS GYM"),
		expenseOn("20240122", "-25.00", "IRON WORKS GYM"),
		//monthly charges with one late payment off cadence
		expenseOn("20240105", "-15.49", "NETFLIX.COM 0881234"),
		expenseOn("20240205", "-15.49", "NETFLIX.COM 0899911"),
		expenseOn("20240305", "-15.49", "NETFLIX.COM 0812077"),
		expenseOn("20240415", "-15.49", "NETFLIX.COM 0881234"),
	}

	candidates := Detect(transactions, DefaultOptions(), cfg)
	is.Equal(len(candidates), 2)
	is.Equal(candidates[0].MerchantKey, "IRON WORKS GYM")
	is.Equal(candidates[0].Score, 1.0)
	is.Equal(candidates[1].MerchantKey, "NETFLIX COM")
	is.True(candidates[1].Score < 1.0)
}

func TestCandidate_SuggestedBill(t *testing.T) {
	is := is.New(t)
	monthly := Candidate{
		Merchant:     "NETFLIX.COM",
		MerchantKey:  "NETFLIX COM",
		Amount:       decimal.RequireFromString("15.49"),
		Cadence:      CadenceMonthly,
		NextExpected: getTestDate("20240506"),
	}
	bill, ok := monthly.SuggestedBill()
	is.True(ok)
	is.Equal(bill.DueDay, 6)
	is.Equal(bill.IntervalMonths, 1)
	is.True(bill.FirstDueOn.Equal(getTestDate("20240506")))
	is.True(bill.AutoDetected)
	is.True(bill.Active)
	is.True(bill.Amount.Equal(decimal.RequireFromString("15.49")))

	weekly := Candidate{Cadence: CadenceWeekly}
	_, ok = weekly.SuggestedBill()
	is.True(!ok)
}
