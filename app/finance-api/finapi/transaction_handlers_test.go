package finapi

import (
	"reflect"
	"testing"
)

func Test_parseAccountIds(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []int64
		wantErr bool
	}{
		{
			name:  "empty value is no filter",
			value: "",
			want:  nil,
		},
		{
			name:  "single id",
			value: "12",
			want:  []int64{12},
		},
		{
			name:  "several ids with spaces",
			value: "12, 31,7",
			want:  []int64{12, 31, 7},
		},
		{
			name:    "unparseable id",
			value:   "12,checking",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAccountIds(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseAccountIds() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAccountIds() got = %v, want %v", got, tt.want)
			}
		})
	}
}
