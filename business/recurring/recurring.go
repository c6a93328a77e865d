// Package recurring detects recurring payment patterns in ledger transactions,
// producing recurring bill candidates from charges that repeat at a steady cadence
// with a steady amount.
package recurring

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

const (
	CadenceWeekly    = "weekly"
	CadenceBiweekly  = "biweekly"
	CadenceMonthly   = "monthly"
	CadenceQuarterly = "quarterly"
	CadenceYearly    = "yearly"
)

// Options tunes the detector
type Options struct {
	// AmountTolerance is the allowed relative drift between charges in a pattern,
	// 0.08 lets a charge swing eight percent from the first one seen
	AmountTolerance decimal.Decimal
	// DateJitterDays is how many days off cadence a charge may land and still count
	DateJitterDays int
	// MinOccurrences is the fewest charges that can form a pattern
	MinOccurrences int
	// MinScore drops patterns whose charges keep cadence less often than this fraction
	MinScore float64
}

// DefaultOptions returns the detector tuning used when a caller has no overrides
func DefaultOptions() Options {
	return Options{
		AmountTolerance: decimal.RequireFromString("0.08"),
		DateJitterDays:  3,
		MinOccurrences:  3,
		MinScore:        0.5,
	}
}

// Candidate is one detected recurring payment pattern
type Candidate struct {
	Merchant     string          `json:"merchant"`
	MerchantKey  string          `json:"merchant_key"`
	Amount       decimal.Decimal `json:"amount"`
	Cadence      string          `json:"cadence"`
	IntervalDays int             `json:"interval_days"`
	Occurrences  int             `json:"occurrences"`
	FirstSeen    time.Time       `json:"first_seen"`
	LastSeen     time.Time       `json:"last_seen"`
	NextExpected time.Time       `json:"next_expected"`
	// Score is the fraction of the pattern's gaps that kept cadence, 0 to 1
	Score float64 `json:"score"`
}

// SuggestedBill builds a bill from the candidate for cadences that fit the bill
// model's month stepping. Weekly and biweekly patterns return false, they are
// surfaced as candidates only
func (c Candidate) SuggestedBill() (ledger.Bill, bool) {
	var intervalMonths int
	switch c.Cadence {
	case CadenceMonthly:
		intervalMonths = 1
	case CadenceQuarterly:
		intervalMonths = 3
	case CadenceYearly:
		intervalMonths = 12
	default:
		return ledger.Bill{}, false
	}
	return ledger.Bill{
		Name:           c.Merchant,
		Merchant:       c.Merchant,
		Amount:         c.Amount,
		DueDay:         c.NextExpected.Day(),
		IntervalMonths: intervalMonths,
		FirstDueOn:     c.NextExpected,
		LeadDays:       3,
		AutoDetected:   true,
		Active:         true,
	}, true
}

type cadenceDef struct {
	name string
	days int
}

//cadenceDefs lists the charge cadences the detector recognizes, by nominal gap in days
func cadenceDefs() []cadenceDef {
	return []cadenceDef{
		{name: CadenceWeekly, days: 7},
		{name: CadenceBiweekly, days: 14},
		{name: CadenceMonthly, days: 30},
		{name: CadenceQuarterly, days: 91},
		{name: CadenceYearly, days: 365},
	}
}

// Detect finds recurring payment patterns in the transactions provided. Only posted
// expenses are considered. The next expected charge date of each pattern is adjusted
// forward to a business day under cfg. Results are ordered by score, best first
func Detect(transactions []ledger.Transaction, opts Options, cfg bizday.Config) []Candidate {
	groups := make(map[string][]ledger.Transaction)
	labels := make(map[string]string)
	for _, transaction := range transactions {
		if !transaction.IsExpense() || transaction.Pending {
			continue
		}
		key := NormalizeMerchant(transaction.Merchant)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], transaction)
		labels[key] = transaction.Merchant
	}

	candidates := make([]Candidate, 0)
	for key, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].PostedOn.Before(group[j].PostedOn)
		})
		for _, cluster := range clusterByAmount(group, opts.AmountTolerance) {
			if len(cluster) < opts.MinOccurrences {
				continue
			}
			candidate, found := measureCluster(cluster, opts, cfg)
			if !found || candidate.Score < opts.MinScore {
				continue
			}
			candidate.Merchant = labels[key]
			candidate.MerchantKey = key
			candidates = append(candidates, candidate)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].MerchantKey < candidates[j].MerchantKey
	})
	return candidates
}

// NormalizeMerchant reduces a raw merchant descriptor to a grouping key. Card
// processors append store numbers, reference codes and city fragments that vary
// between charges of the same merchant, so digits and punctuation are dropped and
// the rest is uppercased
func NormalizeMerchant(merchant string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToUpper(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return ' '
		}
	}, merchant)
	return strings.Join(strings.Fields(mapped), " ")
}

//clusterByAmount splits a merchant's charges into groups of like amounts. A charge
//joins the first cluster whose anchor amount it sits within tolerance of
func clusterByAmount(group []ledger.Transaction, tolerance decimal.Decimal) [][]ledger.Transaction {
	clusters := make([][]ledger.Transaction, 0)
	anchors := make([]decimal.Decimal, 0)
	for _, transaction := range group {
		amount := transaction.Amount.Abs()
		assigned := false
		for i, anchor := range anchors {
			if amountsAlike(amount, anchor, tolerance) {
				clusters[i] = append(clusters[i], transaction)
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, []ledger.Transaction{transaction})
			anchors = append(anchors, amount)
		}
	}
	return clusters
}

func amountsAlike(amount decimal.Decimal, anchor decimal.Decimal, tolerance decimal.Decimal) bool {
	if anchor.IsZero() {
		return amount.IsZero()
	}
	drift := amount.Sub(anchor).Abs().Div(anchor)
	return drift.LessThanOrEqual(tolerance)
}

//measureCluster fits a cadence to one cluster of like amount charges
func measureCluster(cluster []ledger.Transaction, opts Options, cfg bizday.Config) (Candidate, bool) {
	gaps := make([]int, 0, len(cluster)-1)
	for i := 1; i < len(cluster); i++ {
		gaps = append(gaps, daysBetween(cluster[i-1].PostedOn, cluster[i].PostedOn))
	}
	if len(gaps) == 0 {
		return Candidate{}, false
	}
	median := medianInt(gaps)

	var cadence cadenceDef
	matched := false
	for _, def := range cadenceDefs() {
		if absInt(median-def.days) <= opts.DateJitterDays {
			cadence = def
			matched = true
			break
		}
	}
	if !matched {
		return Candidate{}, false
	}

	kept := 0
	for _, gap := range gaps {
		if absInt(gap-cadence.days) <= opts.DateJitterDays {
			kept++
		}
	}

	first := cluster[0].PostedOn
	last := cluster[len(cluster)-1].PostedOn
	return Candidate{
		Amount:       medianAmount(cluster),
		Cadence:      cadence.name,
		IntervalDays: cadence.days,
		Occurrences:  len(cluster),
		FirstSeen:    first,
		LastSeen:     last,
		NextExpected: bizday.AdjustToBusinessDay(last.AddDate(0, 0, cadence.days), cfg),
		Score:        float64(kept) / float64(len(gaps)),
	}, true
}

//daysBetween returns whole calendar days from a to b at day granularity
func daysBetween(a time.Time, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

func medianInt(values []int) int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

func medianAmount(cluster []ledger.Transaction) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(cluster))
	for _, transaction := range cluster {
		amounts = append(amounts, transaction.Amount.Abs())
	}
	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].LessThan(amounts[j])
	})
	return amounts[len(amounts)/2]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
