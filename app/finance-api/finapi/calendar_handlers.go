package finapi

import (
	logger "log"
	"net/http"
	"time"

	"github.com/fincast/fincast/business/bizday"
)

//calendarDayHandler responds to business day status requests for a single date
type calendarDayHandler struct {
	log      *logger.Logger
	calendar bizday.Config
}

//calendarDayHandler factory
func makeCalendarDayHandler(log *logger.Logger, calendar bizday.Config) *calendarDayHandler {
	return &calendarDayHandler{
		log:      log,
		calendar: calendar,
	}
}

//ServeHTTP implements calendarDayHandler's http.Handler interface
func (h *calendarDayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", time.Now())
	if err != nil {
		http.Error(w, "unable to parse date parameter", http.StatusBadRequest)
		return
	}
	info := bizday.Describe(date, h.calendar)
	writeJSON(h.log, w, makeJsonCalendarDayResponse(date, info))
}

//JsonCalendarDayResponse provides json response for a single date's business day status
type JsonCalendarDayResponse struct {
	Date            string `json:"date"`
	IsBusinessDay   bool   `json:"is_business_day"`
	Reason          string `json:"reason,omitempty"`
	NextBusinessDay string `json:"next_business_day,omitempty"`
}

//makeJsonCalendarDayResponse creates JsonCalendarDayResponse from bizday.DayInfo
func makeJsonCalendarDayResponse(date time.Time, info bizday.DayInfo) *JsonCalendarDayResponse {
	response := &JsonCalendarDayResponse{
		Date:          date.Format("2006-01-02"),
		IsBusinessDay: info.IsBusinessDay,
		Reason:        info.Reason,
	}
	if info.NextBusinessDay != nil {
		response.NextBusinessDay = info.NextBusinessDay.Format("2006-01-02")
	}
	return response
}

//calendarShiftHandler responds to requests to move a date by a number of business days
type calendarShiftHandler struct {
	log      *logger.Logger
	calendar bizday.Config
}

//calendarShiftHandler factory
func makeCalendarShiftHandler(log *logger.Logger, calendar bizday.Config) *calendarShiftHandler {
	return &calendarShiftHandler{
		log:      log,
		calendar: calendar,
	}
}

//ServeHTTP implements calendarShiftHandler's http.Handler interface
func (h *calendarShiftHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", time.Now())
	if err != nil {
		http.Error(w, "unable to parse date parameter", http.StatusBadRequest)
		return
	}
	days, err := intParam(r, "days", 0)
	if err != nil {
		http.Error(w, "unable to parse days parameter", http.StatusBadRequest)
		return
	}
	result := bizday.AddBusinessDays(date, days, h.calendar)
	writeJSON(h.log, w, &JsonCalendarShiftResponse{
		Date:         date.Format("2006-01-02"),
		BusinessDays: days,
		Result:       result.Format("2006-01-02"),
	})
}

//JsonCalendarShiftResponse provides json response for a business day shift
type JsonCalendarShiftResponse struct {
	Date         string `json:"date"`
	BusinessDays int    `json:"business_days"`
	Result       string `json:"result"`
}

//calendarSpanHandler responds to requests to count business days between two dates
type calendarSpanHandler struct {
	log      *logger.Logger
	calendar bizday.Config
}

//calendarSpanHandler factory
func makeCalendarSpanHandler(log *logger.Logger, calendar bizday.Config) *calendarSpanHandler {
	return &calendarSpanHandler{
		log:      log,
		calendar: calendar,
	}
}

//ServeHTTP implements calendarSpanHandler's http.Handler interface
func (h *calendarSpanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start, err := requiredDateParam(r, "start")
	if err != nil {
		http.Error(w, "unable to parse start parameter", http.StatusBadRequest)
		return
	}
	end, err := requiredDateParam(r, "end")
	if err != nil {
		http.Error(w, "unable to parse end parameter", http.StatusBadRequest)
		return
	}
	count := bizday.BusinessDaysBetween(start, end, h.calendar)
	writeJSON(h.log, w, &JsonCalendarSpanResponse{
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		BusinessDays: count,
	})
}

//JsonCalendarSpanResponse provides json response for a business day count between two dates
type JsonCalendarSpanResponse struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BusinessDays int    `json:"business_days"`
}
