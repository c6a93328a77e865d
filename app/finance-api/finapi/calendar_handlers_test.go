package finapi

import (
	"encoding/json"
	logger "log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/fincast/fincast/business/bizday"
)

type testLogWriter struct {
	logLines []string
	log      *logger.Logger
}

func makeTestLogWriter() *testLogWriter {
	logWriter := testLogWriter{
		logLines: make([]string, 0),
	}
	log := logger.New(&logWriter, "TEST_FINANCE_API : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	logWriter.log = log
	return &logWriter
}

func (t *testLogWriter) Write(p []byte) (n int, err error) {
	t.logLines = append(t.logLines, string(p))
	return len(p), nil
}

func Test_calendarDayHandler(t *testing.T) {
	testLog := makeTestLogWriter()
	handler := makeCalendarDayHandler(testLog.log, bizday.ConfigForYears(2023, 2025))
	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       *JsonCalendarDayResponse
	}{
		{
			name:       "business day",
			target:     "/calendar/day?date=2024-01-16",
			wantStatus: http.StatusOK,
			want: &JsonCalendarDayResponse{
				Date:          "2024-01-16",
				IsBusinessDay: true,
			},
		},
		{
			name:       "saturday rolls past the mlk holiday",
			target:     "/calendar/day?date=2024-01-13",
			wantStatus: http.StatusOK,
			want: &JsonCalendarDayResponse{
				Date:            "2024-01-13",
				IsBusinessDay:   false,
				Reason:          "Weekend",
				NextBusinessDay: "2024-01-16",
			},
		},
		{
			name:       "holiday carries its name",
			target:     "/calendar/day?date=2024-01-15",
			wantStatus: http.StatusOK,
			want: &JsonCalendarDayResponse{
				Date:            "2024-01-15",
				IsBusinessDay:   false,
				Reason:          "Holiday: Martin Luther King Jr. Day",
				NextBusinessDay: "2024-01-16",
			},
		},
		{
			name:       "unparseable date",
			target:     "/calendar/day?date=01/15/2024",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("calendarDayHandler status = %v, want %v", w.Code, tt.wantStatus)
				return
			}
			if tt.want == nil {
				return
			}
			got := &JsonCalendarDayResponse{}
			err := json.Unmarshal(w.Body.Bytes(), got)
			if err != nil {
				t.Errorf("calendarDayHandler produced unparseable response %s, error:%v", w.Body.String(), err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calendarDayHandler response = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_calendarShiftHandler(t *testing.T) {
	testLog := makeTestLogWriter()
	handler := makeCalendarShiftHandler(testLog.log, bizday.ConfigForYears(2023, 2025))
	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       *JsonCalendarShiftResponse
	}{
		{
			name:       "five business days over a holiday weekend",
			target:     "/calendar/shift?date=2024-01-11&days=5",
			wantStatus: http.StatusOK,
			want: &JsonCalendarShiftResponse{
				Date:         "2024-01-11",
				BusinessDays: 5,
				Result:       "2024-01-19",
			},
		},
		{
			name:       "negative days walk backward",
			target:     "/calendar/shift?date=2024-01-16&days=-1",
			wantStatus: http.StatusOK,
			want: &JsonCalendarShiftResponse{
				Date:         "2024-01-16",
				BusinessDays: -1,
				Result:       "2024-01-12",
			},
		},
		{
			name:       "zero days is identity",
			target:     "/calendar/shift?date=2024-01-16&days=0",
			wantStatus: http.StatusOK,
			want: &JsonCalendarShiftResponse{
				Date:         "2024-01-16",
				BusinessDays: 0,
				Result:       "2024-01-16",
			},
		},
		{
			name:       "unparseable days",
			target:     "/calendar/shift?date=2024-01-16&days=two",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("calendarShiftHandler status = %v, want %v", w.Code, tt.wantStatus)
				return
			}
			if tt.want == nil {
				return
			}
			got := &JsonCalendarShiftResponse{}
			err := json.Unmarshal(w.Body.Bytes(), got)
			if err != nil {
				t.Errorf("calendarShiftHandler produced unparseable response %s, error:%v", w.Body.String(), err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calendarShiftHandler response = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_calendarSpanHandler(t *testing.T) {
	testLog := makeTestLogWriter()
	handler := makeCalendarSpanHandler(testLog.log, bizday.ConfigForYears(2023, 2025))
	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       *JsonCalendarSpanResponse
	}{
		{
			name:       "week containing the mlk holiday",
			target:     "/calendar/span?start=2024-01-12&end=2024-01-19",
			wantStatus: http.StatusOK,
			want: &JsonCalendarSpanResponse{
				Start:        "2024-01-12",
				End:          "2024-01-19",
				BusinessDays: 4,
			},
		},
		{
			name:       "same day",
			target:     "/calendar/span?start=2024-01-16&end=2024-01-16",
			wantStatus: http.StatusOK,
			want: &JsonCalendarSpanResponse{
				Start:        "2024-01-16",
				End:          "2024-01-16",
				BusinessDays: 0,
			},
		},
		{
			name:       "missing start",
			target:     "/calendar/span?end=2024-01-19",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing end",
			target:     "/calendar/span?start=2024-01-12",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("calendarSpanHandler status = %v, want %v", w.Code, tt.wantStatus)
				return
			}
			if tt.want == nil {
				return
			}
			got := &JsonCalendarSpanResponse{}
			err := json.Unmarshal(w.Body.Bytes(), got)
			if err != nil {
				t.Errorf("calendarSpanHandler produced unparseable response %s, error:%v", w.Body.String(), err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calendarSpanHandler response = %+v, want %+v", got, tt.want)
			}
		})
	}
}
