/*
Package server exposes the migration service over HTTP.

Routes:

	POST /migrate?address=A          perform a migration
	GET  /accounts/{address}/status  burn state of an old ledger account
	GET  /status                     funding account snapshot
	GET  /health                     liveness probe
	GET  /metrics                    prometheus collectors
*/
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iov-one/migrate"
	"github.com/iov-one/migrate/errors"
	"github.com/iov-one/migrate/metrics"
	"github.com/iov-one/migrate/migration"
)

// Server is the HTTP surface of the service. Construct with NewServer
// and mount anywhere an http.Handler is accepted.
type Server struct {
	svc    *migration.Service
	ledger migrate.NewLedger
	asset  migrate.Asset
	set    *metrics.Set
	log    *zap.Logger
	debug  bool
	router *mux.Router
}

func NewServer(svc *migration.Service, ledger migrate.NewLedger, asset migrate.Asset, set *metrics.Set, reg prometheus.Gatherer, log *zap.Logger, debug bool) *Server {
	s := &Server{
		svc:    svc,
		ledger: ledger,
		asset:  asset,
		set:    set,
		log:    log,
		debug:  debug,
		router: mux.NewRouter(),
	}
	s.router.Handle("/migrate", s.instrument("migrate", s.handleMigrate)).Methods(http.MethodPost)
	s.router.Handle("/accounts/{address}/status", s.instrument("account_status", s.handleAccountStatus)).Methods(http.MethodGet)
	s.router.Handle("/status", s.instrument("status", s.handleStatus)).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if reg != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// migrateResponse mirrors the wire format migration clients were built
// against. balance is rendered as a JSON number.
type migrateResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Balance migrate.Amount `json:"balance"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type burnResponse struct {
	IsBurned bool `json:"is_burned"`
}

type statusResponse struct {
	Address       string         `json:"address"`
	Balance       migrate.Amount `json:"balance"`
	AssetCode     string         `json:"asset_code"`
	AssetIssuer   string         `json:"asset_issuer"`
	TotalChannels int            `json:"total_channels"`
	FreeChannels  int            `json:"free_channels"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	addr := migrate.Address(r.URL.Query().Get("address"))
	balance, err := s.svc.Migrate(r.Context(), addr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, migrateResponse{
		Code:    http.StatusOK,
		Message: "OK",
		Balance: balance,
	})
}

func (s *Server) handleAccountStatus(w http.ResponseWriter, r *http.Request) {
	addr := migrate.Address(mux.Vars(r)["address"])
	burned, err := s.svc.BurnStatus(r.Context(), addr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, burnResponse{IsBurned: burned})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ledger.Status(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if s.set != nil {
		s.set.ObserveStatus(st)
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Address:       string(st.Address),
		Balance:       st.Balance,
		AssetCode:     s.asset.Code,
		AssetIssuer:   s.asset.Issuer,
		TotalChannels: st.TotalChannels,
		FreeChannels:  st.FreeChannels,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// instrument wraps a handler with access logging and latency
// observation under a stable route label.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		elapsed := time.Since(start)
		if s.set != nil {
			s.set.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}
		s.log.Info("request",
			zap.String("route", route),
			zap.String("method", r.Method),
			zap.Duration("elapsed", elapsed))
	})
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, label, message := errors.HTTPInfo(err, s.debug)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		s.log.Info("request rejected",
			zap.String("path", r.URL.Path),
			zap.String("code", label),
			zap.Error(err))
	}
	if s.set != nil {
		s.set.Errors.WithLabelValues(label).Inc()
	}
	writeJSON(w, status, errorResponse{Code: label, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Run serves until ctx is canceled, then drains connections for up to
// grace before returning.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(sctx)
}
