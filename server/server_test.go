package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/cache"
	"github.com/iov-one/migrate/metrics"
	"github.com/iov-one/migrate/migratetest"
	"github.com/iov-one/migrate/migration"
)

const addr migrate.Address = "GC46XF47MU4NUBBSQJ4KZWLZLN37UECP2TI2IQRYLRUBNGMADHKZBFGL"

var asset = migrate.Asset{
	Code:   "KIN",
	Issuer: "GBC3SG6NGTSZ2OMH3FFGB7UVRQWILW367U4GSOOF4TFSZONV42UJXUH7",
}

type fixture struct {
	old    *migratetest.OldLedger
	ledger *migratetest.NewLedger
	set    *metrics.Set
	srv    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	old := migratetest.NewOldLedger()
	ledger := migratetest.NewNewLedger()
	idem := cache.NewIdempotency(migratetest.NewKV())
	log := zap.NewNop()
	verifier := migration.NewVerifier(old, idem, asset, log)
	svc := migration.NewService(verifier, ledger, idem, migratetest.NewLocker(), nil, nil, log)

	reg := prometheus.NewRegistry()
	set := metrics.NewSet(reg)
	srv := httptest.NewServer(NewServer(svc, ledger, asset, set, reg, log, false))
	t.Cleanup(srv.Close)
	return &fixture{old: old, ledger: ledger, set: set, srv: srv}
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %s", err)
	}
}

func TestMigrateEndpoint(t *testing.T) {
	f := newFixture(t)
	f.old.Accounts[addr] = migratetest.BurnedRecord(addr, asset, migrate.Amount(125000000))

	resp, err := http.Post(f.srv.URL+"/migrate?address="+string(addr), "", nil)
	if err != nil {
		t.Fatalf("post: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body struct {
		Code    int     `json:"code"`
		Message string  `json:"message"`
		Balance float64 `json:"balance"`
	}
	decode(t, resp, &body)
	if body.Code != 200 || body.Message != "OK" {
		t.Fatalf("body: %+v", body)
	}
	if body.Balance != 12.5 {
		t.Fatalf("balance: %f", body.Balance)
	}

	calls := f.ledger.MutatingCalls()
	if len(calls) != 1 || calls[0].Op != "create" {
		t.Fatalf("ledger calls: %+v", calls)
	}
}

func TestMigrateEndpointErrors(t *testing.T) {
	cases := map[string]struct {
		prepare    func(f *fixture)
		address    string
		wantStatus int
		wantCode   string
	}{
		"invalid address": {
			prepare:    func(*fixture) {},
			address:    "not-an-address",
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_address",
		},
		"unknown account": {
			prepare:    func(*fixture) {},
			address:    string(addr),
			wantStatus: http.StatusNotFound,
			wantCode:   "account_not_found",
		},
		"not burned": {
			prepare: func(f *fixture) {
				f.old.Accounts[addr] = &migrate.AccountRecord{
					Address: addr,
					Signers: []migrate.Signer{{Key: string(addr), Weight: 1}},
				}
			},
			address:    string(addr),
			wantStatus: http.StatusBadRequest,
			wantCode:   "account_not_burned",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			tc.prepare(f)

			resp, err := http.Post(f.srv.URL+"/migrate?address="+tc.address, "", nil)
			if err != nil {
				t.Fatalf("post: %s", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status: %d", resp.StatusCode)
			}
			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			decode(t, resp, &body)
			if body.Code != tc.wantCode {
				t.Fatalf("code: %q", body.Code)
			}
			if got := testutil.ToFloat64(f.set.Errors.WithLabelValues(tc.wantCode)); got != 1 {
				t.Fatalf("error counter: %f", got)
			}
		})
	}
}

func TestMigrateEndpointIdempotence(t *testing.T) {
	f := newFixture(t)
	f.old.Accounts[addr] = migratetest.BurnedRecord(addr, asset, migrate.Amount(125000000))

	url := f.srv.URL + "/migrate?address=" + string(addr)
	resp, err := http.Post(url, "", nil)
	if err != nil {
		t.Fatalf("first post: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first status: %d", resp.StatusCode)
	}

	resp, err = http.Post(url, "", nil)
	if err != nil {
		t.Fatalf("second post: %s", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second status: %d", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decode(t, resp, &body)
	if body.Code != "already_migrated" {
		t.Fatalf("code: %q", body.Code)
	}
}

func TestAccountStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	f.old.Accounts[addr] = migratetest.BurnedRecord(addr, asset, 0)

	resp, err := http.Get(f.srv.URL + "/accounts/" + string(addr) + "/status")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body struct {
		IsBurned bool `json:"is_burned"`
	}
	decode(t, resp, &body)
	if !body.IsBurned {
		t.Fatal("expected burned")
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body struct {
		Address       string  `json:"address"`
		Balance       float64 `json:"balance"`
		AssetCode     string  `json:"asset_code"`
		AssetIssuer   string  `json:"asset_issuer"`
		TotalChannels int     `json:"total_channels"`
		FreeChannels  int     `json:"free_channels"`
	}
	decode(t, resp, &body)
	if body.Address != string(addr) {
		t.Fatalf("address: %q", body.Address)
	}
	if body.AssetCode != asset.Code || body.AssetIssuer != asset.Issuer {
		t.Fatalf("asset: %s %s", body.AssetCode, body.AssetIssuer)
	}
	if body.TotalChannels != 10 || body.FreeChannels != 10 {
		t.Fatalf("channels: %+v", body)
	}
	// The snapshot feeds the gauges as a side effect.
	if got := testutil.ToFloat64(f.set.WalletBalance); got != 100 {
		t.Fatalf("wallet gauge: %f", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}
