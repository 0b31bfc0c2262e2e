// remitd exposes the remittance workflow as four form-style HTTP panels:
// setup (enable the receiver's trust line), send (lock collateral), claim
// (release escrow + collect token) and balances.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ShyamalV18/Migrasend-mvp/clients/xrpl"
	"github.com/ShyamalV18/Migrasend-mvp/config"
	"github.com/ShyamalV18/Migrasend-mvp/remit"
)

type server struct {
	workflow *remit.Workflow
	session  *remit.Session
	log      *slog.Logger
}

func (s *server) EnableTrustHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.EnableReceiverTrust(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "receiver wallet enabled"})
}

type sendRequest struct {
	USDAmount string `json:"usd_amount"`
}

type sendResponse struct {
	EscrowSequence uint32 `json:"escrow_sequence"`
	EscrowOwner    string `json:"escrow_owner"`
	FinishAfter    string `json:"finish_after"`
}

func (s *server) LockHandler(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.USDAmount)
	if err != nil {
		http.Error(w, "Invalid usd_amount", http.StatusBadRequest)
		return
	}

	escrow, err := s.workflow.LockCollateral(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// Record the handle only after the lock fully succeeded.
	s.session.RecordEscrow(escrow.Owner, escrow.Sequence)
	s.session.SetPendingAmount(amount)
	s.log.Info("escrow handle recorded in session", "sequence", escrow.Sequence)

	writeJSON(w, sendResponse{
		EscrowSequence: escrow.Sequence,
		EscrowOwner:    escrow.Owner,
		FinishAfter:    escrow.FinishAfter.Format(time.RFC3339),
	})
}

type claimRequest struct {
	Owner     string `json:"owner"`
	Sequence  uint32 `json:"sequence"`
	USDAmount string `json:"usd_amount"`
}

func (s *server) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Prefill from session state, like the original form defaults.
	owner, sequence := req.Owner, req.Sequence
	if owner == "" || sequence == 0 {
		if o, seq, ok := s.session.Escrow(); ok {
			if owner == "" {
				owner = o
			}
			if sequence == 0 {
				sequence = seq
			}
		}
	}
	if owner == "" || sequence == 0 {
		http.Error(w, "No escrow to claim: supply owner and sequence", http.StatusBadRequest)
		return
	}

	amount := s.session.PendingAmount()
	if req.USDAmount != "" {
		parsed, err := decimal.NewFromString(req.USDAmount)
		if err != nil {
			http.Error(w, "Invalid usd_amount", http.StatusBadRequest)
			return
		}
		amount = parsed
	}
	if amount.IsZero() {
		http.Error(w, "No usd_amount to claim", http.StatusBadRequest)
		return
	}

	if err := s.workflow.Claim(r.Context(), s.session, owner, sequence, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "claimed", "usd_amount": amount.String()})
}

type balancesResponse struct {
	SenderDrops   uint64 `json:"sender_drops"`
	ReceiverDrops uint64 `json:"receiver_drops"`
	ReceiverUSD   string `json:"receiver_usd"`
}

func (s *server) BalancesHandler(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.workflow.Balances(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, balancesResponse{
		SenderDrops:   sheet.SenderDrops,
		ReceiverDrops: sheet.ReceiverDrops,
		ReceiverUSD:   sheet.ReceiverToken.StringFixed(2),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps workflow failures to per-action HTTP responses. Nothing
// here is fatal to the process; the user retries the same panel.
func writeError(w http.ResponseWriter, err error) {
	var precondition *remit.PreconditionError
	var notFound *remit.AccountNotFoundError
	var transport *remit.TransportError
	var submission *remit.SubmissionError

	switch {
	case errors.As(err, &precondition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, remit.ErrTrustLineUnknown), errors.As(err, &transport):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &submission):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("Invalid policy config: %v", err)
	}

	logger := slog.Default()
	ledger := xrpl.NewClient(xrpl.Config{Endpoint: cfg.RPCEndpoint})
	workflow := remit.New(ledger, cfg.SenderAccount(), cfg.ReceiverAccount(), policy, logger)

	srv := &server{
		workflow: workflow,
		session:  remit.NewSession(),
		log:      logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/setup/trustline", srv.EnableTrustHandler).Methods("POST")
	r.HandleFunc("/send/escrow", srv.LockHandler).Methods("POST")
	r.HandleFunc("/claim", srv.ClaimHandler).Methods("POST")
	r.HandleFunc("/balances", srv.BalancesHandler).Methods("GET")

	logger.Info("remitd listening", "addr", cfg.ListenAddr, "endpoint", cfg.RPCEndpoint)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
