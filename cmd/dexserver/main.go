package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/holiman/uint256"

	config "stableswap-network/cmd/config"
	core "stableswap-network/core"
	"stableswap-network/pkg/fixedmath"
)

// httpTransferer stands in for a real token contract integration: it logs
// every payout instead of moving funds on a chain.
type httpTransferer struct{ logger *log.Logger }

func (t httpTransferer) Transfer(token core.TokenID, from, to core.AccountID, amount *uint256.Int) error {
	t.logger.WithFields(log.Fields{
		"token": token, "from": from, "to": to, "amount": amount.String(),
	}).Info("payout")
	return nil
}

func poolsHandler(ex *core.Exchange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pools := ex.Pools()
		out := make([]core.PoolView, 0, len(pools))
		for _, p := range pools {
			v, err := p.View(time.Now())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, v)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func poolHandler(ex *core.Exchange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			http.Error(w, "bad pool id", http.StatusBadRequest)
			return
		}
		p, err := ex.Pool(core.PoolID(n))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		v, err := p.View(time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func accountHandler(ex *core.Exchange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := core.AccountID(chi.URLParam(r, "id"))
		out := make(map[string]string)
		for _, tok := range ex.Ledger().RegisteredTokens(id) {
			out[string(tok)] = ex.Ledger().BalanceOf(id, tok).String()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

type transferRequest struct {
	Sender string `json:"sender"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
	Msg    string `json:"msg"`
}

func transferHandler(ex *core.Exchange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		amount, err := fixedmath.FromDecimalString(req.Amount)
		if err != nil {
			http.Error(w, "bad amount", http.StatusBadRequest)
			return
		}
		var msg []byte
		if req.Msg != "" {
			msg = []byte(req.Msg)
		}
		if err := ex.OnTokenTransfer(core.AccountID(req.Sender), core.TokenID(req.Token), amount, msg, time.Now()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func main() {
	config.LoadConfig(os.Getenv("EXCHANGE_ENV"))
	cfg := config.AppConfig.Exchange

	logger := log.New()
	if lvl, err := log.ParseLevel(config.AppConfig.Logging.Level); err == nil {
		logger.SetLevel(lvl)
	}

	owner := core.AccountID(cfg.OwnerAddress)
	self := core.AccountID(cfg.SelfAddress)
	defaultFees := core.Fees{
		TradeFeeNum: cfg.DefaultTradeFeeNum, TradeFeeDen: cfg.DefaultTradeFeeDen,
		AdminTradeFeeNum: cfg.DefaultAdminTradeFeeNum, AdminTradeFeeDen: cfg.DefaultAdminTradeFeeDen,
		WithdrawFeeNum: cfg.DefaultWithdrawFeeNum, WithdrawFeeDen: cfg.DefaultWithdrawFeeDen,
		AdminWithdrawFeeNum: cfg.DefaultAdminWithdrawFeeNum, AdminWithdrawFeeDen: cfg.DefaultAdminWithdrawFeeDen,
	}
	cooldown := time.Duration(cfg.FeeChangeCooldownHours) * time.Hour
	ex := core.NewExchange(owner, self, httpTransferer{logger: logger}, logger, defaultFees, cooldown)
	if cfg.PoolsFixture != "" {
		if err := ex.LoadPoolsFromFile(cfg.PoolsFixture); err != nil {
			logger.Fatalf("load pools fixture: %v", err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/pools", poolsHandler(ex))
	r.Get("/pools/{id}", poolHandler(ex))
	r.Get("/accounts/{id}", accountHandler(ex))
	r.Post("/transfer", transferHandler(ex))

	addr := cfg.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:8081"
	}
	logger.Printf("dexserver listening on %s", addr)
	logger.Fatal(http.ListenAndServe(addr, r))
}
