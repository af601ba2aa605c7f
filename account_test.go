package migrate

import "testing"

var testAsset = Asset{
	Code:   "KIN",
	Issuer: "GBC3SG6NGTSZ2OMH3FFGB7UVRQWILW367U4GSOOF4TFSZONV42UJXUH7",
}

func TestAccountRecordBurned(t *testing.T) {
	cases := map[string]struct {
		signers []Signer
		want    bool
	}{
		"single zero weight signer": {
			signers: []Signer{{Key: "master", Weight: 0}},
			want:    true,
		},
		"single signer with weight": {
			signers: []Signer{{Key: "master", Weight: 1}},
			want:    false,
		},
		"two signers": {
			signers: []Signer{
				{Key: "master", Weight: 0},
				{Key: "extra", Weight: 0},
			},
			want: false,
		},
		"no signers": {
			signers: nil,
			want:    false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := AccountRecord{Signers: tc.signers}
			if got := rec.Burned(); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAccountRecordBalance(t *testing.T) {
	cases := map[string]struct {
		balances []BalanceLine
		want     Amount
	}{
		"matching line": {
			balances: []BalanceLine{
				{Asset: testAsset, Amount: 1230000000},
			},
			want: 1230000000,
		},
		"wrong issuer does not count": {
			balances: []BalanceLine{
				{
					Asset: Asset{
						Code:   testAsset.Code,
						Issuer: "GC46XF47MU4NUBBSQJ4KZWLZLN37UECP2TI2IQRYLRUBNGMADHKZBFGL",
					},
					Amount: 1230000000,
				},
			},
			want: 0,
		},
		"wrong code does not count": {
			balances: []BalanceLine{
				{
					Asset:  Asset{Code: "XYZ", Issuer: testAsset.Issuer},
					Amount: 1230000000,
				},
			},
			want: 0,
		},
		"no line means zero": {
			balances: nil,
			want:     0,
		},
		"picks the matching line among many": {
			balances: []BalanceLine{
				{Asset: Asset{Code: "XYZ", Issuer: testAsset.Issuer}, Amount: 5},
				{Asset: testAsset, Amount: 70000000},
			},
			want: 70000000,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := AccountRecord{Balances: tc.balances}
			if got := rec.Balance(testAsset); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}
