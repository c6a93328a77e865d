package ledger

import (
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SavingsGoal tracks money put aside toward a target amount by a target date
type SavingsGoal struct {
	Id           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	TargetAmount decimal.Decimal `db:"target_amount" json:"target_amount"`
	SavedAmount  decimal.Decimal `db:"saved_amount" json:"saved_amount"`
	TargetDate   time.Time       `db:"target_date" json:"target_date"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time      `db:"updated_at" json:"updated_at"`
}

// PercentComplete returns how much of the target has been saved, as a percent
func (g *SavingsGoal) PercentComplete() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.NewFromInt(100)
	}
	return g.SavedAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// Remaining returns the amount still to be saved, never negative
func (g *SavingsGoal) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.SavedAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// GoalProgress is a savings goal with its pacing figures as of a date
type GoalProgress struct {
	SavingsGoal
	PercentComplete        decimal.Decimal `json:"percent_complete"`
	BusinessDaysLeft       int             `json:"business_days_left"`
	RequiredPerBusinessDay decimal.Decimal `json:"required_per_business_day"`
	OnTrack                bool            `json:"on_track"`
}

// ProgressAsOf reports the goal's pacing as of a date. Pacing is measured in business
// days, money is assumed to move toward a goal on days money can move. A goal is on
// track when the saved amount is at least the straight line expectation between the
// goal's creation and its target date
func (g *SavingsGoal) ProgressAsOf(asOf time.Time, cfg bizday.Config) GoalProgress {
	progress := GoalProgress{
		SavingsGoal:     *g,
		PercentComplete: g.PercentComplete(),
	}
	daysLeft := bizday.BusinessDaysBetween(asOf, g.TargetDate, cfg)
	if daysLeft > 0 {
		progress.BusinessDaysLeft = daysLeft
		progress.RequiredPerBusinessDay = g.Remaining().Div(decimal.NewFromInt(int64(daysLeft))).Round(2)
	} else {
		progress.RequiredPerBusinessDay = g.Remaining()
	}

	total := bizday.BusinessDaysBetween(g.CreatedAt, g.TargetDate, cfg)
	if total <= 0 {
		progress.OnTrack = !g.Remaining().IsPositive()
		return progress
	}
	elapsed := bizday.BusinessDaysBetween(g.CreatedAt, asOf, cfg)
	expected := g.TargetAmount.Mul(decimal.NewFromInt(int64(elapsed))).Div(decimal.NewFromInt(int64(total)))
	progress.OnTrack = g.SavedAmount.GreaterThanOrEqual(expected)
	return progress
}

// SaveSavingsGoal saves new or updates existing SavingsGoals. Existing records are
// determined by a non-zero SavingsGoal.Id
func SaveSavingsGoal(tx *sqlx.Tx, goal *SavingsGoal) error {
	statementString := "insert into savings_goal ( " +
		"name, " +
		"target_amount, " +
		"saved_amount, " +
		"target_date, " +
		"created_at, " +
		"updated_at) " +
		"values (" +
		":name, " +
		":target_amount, " +
		":saved_amount, " +
		":target_date, " +
		":created_at, " +
		":updated_at)"
	if goal.Id != 0 {
		statementString = "update savings_goal set " +
			"name = :name, " +
			"target_amount = :target_amount, " +
			"saved_amount = :saved_amount, " +
			"target_date = :target_date, " +
			"updated_at = :updated_at " +
			" where id = :id"
	}
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, goal)
	if err != nil {
		return err
	}
	if goal.Id == 0 {
		statementString = tx.Rebind("SELECT id FROM savings_goal where name = ? order by id desc limit 1")
		err = tx.Get(&goal.Id, statementString, goal.Name)
	}
	return err
}

// GetSavingsGoal retrieves SavingsGoal with goalId
func GetSavingsGoal(db *sqlx.DB, goalId int64) (*SavingsGoal, error) {
	query := "select * from savings_goal where id = $1"
	goal := SavingsGoal{}
	err := db.Get(&goal, db.Rebind(query), goalId)
	return &goal, err
}

// GetAllSavingsGoals retrieves all savings goals ordered by target date
func GetAllSavingsGoals(db *sqlx.DB) ([]SavingsGoal, error) {
	query := "select * from savings_goal order by target_date"
	var results []SavingsGoal
	err := db.Select(&results, query)
	return results, err
}

// AddToSavingsGoal records a contribution toward goalId
func AddToSavingsGoal(db *sqlx.DB, goalId int64, amount decimal.Decimal, at time.Time) error {
	statement := "update savings_goal set saved_amount = saved_amount + $1, updated_at = $2 where id = $3"
	_, err := db.Exec(db.Rebind(statement), amount, at, goalId)
	return err
}
