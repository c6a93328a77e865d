package finapi

import (
	"net/http/httptest"
	"testing"
	"time"
)

func Test_dateParam(t *testing.T) {
	fallback := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		target  string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "present",
			target: "/calendar/day?date=2024-01-15",
			want:   getTestDate("2024-01-15"),
		},
		{
			name:   "absent uses fallback",
			target: "/calendar/day",
			want:   fallback,
		},
		{
			name:    "unparseable",
			target:  "/calendar/day?date=Jan+15",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dateParam(httptest.NewRequest("GET", tt.target, nil), "date", fallback)
			if (err != nil) != tt.wantErr {
				t.Errorf("dateParam() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("dateParam() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_intParam(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    int
		wantErr bool
	}{
		{
			name:   "present",
			target: "/bills/upcoming?days=45",
			want:   45,
		},
		{
			name:   "absent uses fallback",
			target: "/bills/upcoming",
			want:   30,
		},
		{
			name:    "unparseable",
			target:  "/bills/upcoming?days=soon",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intParam(httptest.NewRequest("GET", tt.target, nil), "days", 30)
			if (err != nil) != tt.wantErr {
				t.Errorf("intParam() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("intParam() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_defaultHttpHandler(t *testing.T) {
	w := httptest.NewRecorder()
	handler := defaultHttpHandler{}
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get("Application-Status") != "OK" {
		t.Errorf("defaultHttpHandler did not set Application-Status header")
	}
}
