package finapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"strconv"
	"time"

	"github.com/fincast/fincast/business/bizday"
	"github.com/fincast/fincast/business/data/ledger"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//goalListHandler responds with every savings goal and its pacing
type goalListHandler struct {
	log      *logger.Logger
	db       *sqlx.DB
	calendar bizday.Config
}

//goalListHandler factory
func makeGoalListHandler(log *logger.Logger, db *sqlx.DB, calendar bizday.Config) *goalListHandler {
	return &goalListHandler{
		log:      log,
		db:       db,
		calendar: calendar,
	}
}

//ServeHTTP implements goalListHandler's http.Handler interface
func (h *goalListHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	goals, err := ledger.GetAllSavingsGoals(h.db)
	if err != nil {
		h.log.Printf("Error loading savings goals, error:%v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	now := time.Now()
	progress := make([]ledger.GoalProgress, 0)
	for i := range goals {
		progress = append(progress, goals[i].ProgressAsOf(now, h.calendar))
	}
	writeJSON(h.log, w, &JsonGoalListResponse{
		AsOf:  now.Format("2006-01-02"),
		Goals: progress,
	})
}

//JsonGoalListResponse provides json response wrapper around ledger.GoalProgress
type JsonGoalListResponse struct {
	AsOf  string                `json:"as_of"`
	Goals []ledger.GoalProgress `json:"goals"`
}

//goalCreateHandler records a new savings goal
type goalCreateHandler struct {
	log      *logger.Logger
	db       *sqlx.DB
	calendar bizday.Config
}

//goalCreateHandler factory
func makeGoalCreateHandler(log *logger.Logger, db *sqlx.DB, calendar bizday.Config) *goalCreateHandler {
	return &goalCreateHandler{
		log:      log,
		db:       db,
		calendar: calendar,
	}
}

//goalRequest is the expected body of a savings goal create post
type goalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	TargetDate   string          `json:"target_date"`
}

//ServeHTTP implements goalCreateHandler's http.Handler interface
func (h *goalCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var request goalRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		http.Error(w, "unable to parse savings goal body", http.StatusBadRequest)
		return
	}
	goal, err := buildSavingsGoal(request)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := time.Now()
	goal.CreatedAt = now
	err = transact(h.log, h.db, func(tx *sqlx.Tx) error {
		return ledger.SaveSavingsGoal(tx, goal)
	})
	if err != nil {
		h.log.Printf("Error saving savings goal %s, error:%v", goal.Name, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	h.log.Printf("Saved savings goal %s as id:%d", goal.Name, goal.Id)
	writeJSONStatus(h.log, w, http.StatusCreated, goal.ProgressAsOf(now, h.calendar))
}

//buildSavingsGoal creates a ledger.SavingsGoal from a goal create request
func buildSavingsGoal(request goalRequest) (*ledger.SavingsGoal, error) {
	if request.Name == "" {
		return nil, errors.New("missing name")
	}
	if !request.TargetAmount.IsPositive() {
		return nil, errors.New("target_amount must be positive")
	}
	if request.SavedAmount.IsNegative() {
		return nil, errors.New("saved_amount cannot be negative")
	}
	targetDate, err := time.Parse("2006-01-02", request.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("unable to parse target_date %s", request.TargetDate)
	}
	return &ledger.SavingsGoal{
		Name:         request.Name,
		TargetAmount: request.TargetAmount,
		SavedAmount:  request.SavedAmount,
		TargetDate:   targetDate,
	}, nil
}

//goalContributeHandler records a contribution toward a savings goal
type goalContributeHandler struct {
	log      *logger.Logger
	db       *sqlx.DB
	calendar bizday.Config
}

//goalContributeHandler factory
func makeGoalContributeHandler(log *logger.Logger, db *sqlx.DB, calendar bizday.Config) *goalContributeHandler {
	return &goalContributeHandler{
		log:      log,
		db:       db,
		calendar: calendar,
	}
}

//contributionRequest is the expected body of a contribution post
type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

//ServeHTTP implements goalContributeHandler's http.Handler interface
func (h *goalContributeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	goalId, err := strconv.ParseInt(mux.Vars(r)["goalId"], 10, 64)
	if err != nil {
		http.Error(w, "unable to parse goalId", http.StatusBadRequest)
		return
	}
	var contribution contributionRequest
	err = json.NewDecoder(r.Body).Decode(&contribution)
	if err != nil {
		http.Error(w, "unable to parse contribution body", http.StatusBadRequest)
		return
	}
	if !contribution.Amount.IsPositive() {
		http.Error(w, "contribution amount must be positive", http.StatusBadRequest)
		return
	}
	now := time.Now()
	err = ledger.AddToSavingsGoal(h.db, goalId, contribution.Amount, now)
	if err != nil {
		h.log.Printf("Error contributing to savings goal id:%d, error:%v", goalId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	goal, err := ledger.GetSavingsGoal(h.db, goalId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "no savings goal with that id", http.StatusNotFound)
			return
		}
		h.log.Printf("Error loading savings goal id:%d, error:%v", goalId, err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	writeJSON(h.log, w, goal.ProgressAsOf(now, h.calendar))
}
