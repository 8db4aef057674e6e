package routers

import (
	"net/http"

	"gm-rewards/handlers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the HTTP routes for the leveling and rewards API
func RegisterRoutes(r *mux.Router, h *handlers.Handler) {

	// Membership tokens
	r.HandleFunc("/tokens", h.Mint).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}", h.GetToken).Methods("GET")
	r.HandleFunc("/tokens/{id:[0-9]+}/upgrade", h.Upgrade).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}/transfer", h.Transfer).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}/burn", h.Burn).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}/attach", h.AttachNode).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}/detach", h.DetachNode).Methods("POST")
	r.HandleFunc("/tokens/{id:[0-9]+}/select", h.Select).Methods("POST")

	// Accounts and point-in-time selection
	r.HandleFunc("/accounts/{address}", h.GetAccount).Methods("GET")
	r.HandleFunc("/accounts/{address}/selection", h.GetSelection).Methods("GET")

	// Reward ledger
	r.HandleFunc("/votes", h.RegisterVote).Methods("POST")
	r.HandleFunc("/cycles/current", h.GetCurrentCycle).Methods("GET")
	r.HandleFunc("/cycles/{id:[0-9]+}", h.GetCycle).Methods("GET")
	r.HandleFunc("/cycles/{id:[0-9]+}/rewards/{voter}", h.GetReward).Methods("GET")
	r.HandleFunc("/cycles/{id:[0-9]+}/claims/{voter}", h.ClaimReward).Methods("POST")

	// Node registry
	r.HandleFunc("/nodes", h.RegisterNode).Methods("POST")
	r.HandleFunc("/nodes/{id:[0-9]+}", h.GetNode).Methods("GET")
	r.HandleFunc("/nodes/{id:[0-9]+}/transfer", h.TransferNode).Methods("POST")
	r.HandleFunc("/nodes/{id:[0-9]+}/manager", h.SetNodeManager).Methods("POST")

	// Value transfer
	r.HandleFunc("/balances/{address}", h.GetBalance).Methods("GET")
	r.HandleFunc("/balances/transfer", h.SendFunds).Methods("POST")

	// Committed event history
	r.HandleFunc("/events", h.ListEvents).Methods("GET")

	// Admin
	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/params", h.GetParams).Methods("GET")
	admin.HandleFunc("/select-for", h.SelectFor).Methods("POST")
	admin.HandleFunc("/thresholds", h.SetThresholds).Methods("POST")
	admin.HandleFunc("/max-level", h.SetMaxLevel).Methods("POST")
	admin.HandleFunc("/node-bonus", h.SetNodeBonus).Methods("POST")
	admin.HandleFunc("/mint-paused", h.SetMintPaused).Methods("POST")
	admin.HandleFunc("/multipliers", h.SetMultiplier).Methods("POST")
	admin.HandleFunc("/quadratic", h.SetQuadratic).Methods("POST")
	admin.HandleFunc("/cycles", h.StartCycle).Methods("POST")
	admin.HandleFunc("/roles", h.SetRole).Methods("POST")
	admin.HandleFunc("/roles/{role}/{address}", h.HasRole).Methods("GET")
	admin.HandleFunc("/credit", h.Credit).Methods("POST")
}

// RegisterMetrics exposes the prometheus handler
func RegisterMetrics(r *mux.Router, metrics http.Handler) {
	r.Handle("/metrics", metrics).Methods("GET")
}
