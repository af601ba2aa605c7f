package migrate

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/migrate/errors"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    Amount
		wantErr *errors.Error
	}{
		"whole tokens": {
			raw:  "123.0000000",
			want: 1230000000,
		},
		"no fraction given": {
			raw:  "17",
			want: 170000000,
		},
		"zero": {
			raw:  "0.0000000",
			want: 0,
		},
		"smallest unit": {
			raw:  "0.0000001",
			want: 1,
		},
		"negative": {
			raw:     "-1",
			wantErr: errors.ErrInvalidAmount,
		},
		"not a number": {
			raw:     "pizza",
			wantErr: errors.ErrInvalidAmount,
		},
		"too much precision": {
			raw:     "1.00000001",
			wantErr: errors.ErrInvalidAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAmountString(t *testing.T) {
	if got := Amount(1230000000).String(); got != "123.0000000" {
		t.Fatalf("unexpected rendering: %q", got)
	}
	if got := Amount(0).String(); got != "0.0000000" {
		t.Fatalf("unexpected zero rendering: %q", got)
	}
}

func TestAmountJSONIsANumber(t *testing.T) {
	raw, err := json.Marshal(Amount(170000000))
	if err != nil {
		t.Fatalf("marshal: %+v", err)
	}
	// Callers consume the balance as a JSON number, not a string.
	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		t.Fatalf("balance is not a JSON number: %s", raw)
	}
	if num != 17 {
		t.Fatalf("want 17, got %v", num)
	}
}
