package handlers

import (
	"net/http"
	"strconv"

	"gm-rewards/journal"
	"gm-rewards/logger"
	"gm-rewards/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RegisterVote handles POST requests from a vote registrar reporting a vote
func (h *Handler) RegisterVote(w http.ResponseWriter, r *http.Request) {
	var vote models.Vote
	if !decode(w, r, &vote) {
		return
	}
	receipt, err := h.Ledger.RegisterVote(caller(r), vote)
	if err != nil {
		writeError(w, "Failed to register vote", err)
		return
	}
	logger.Logger.Debug("Registered vote",
		zap.Uint64("cycle_id", receipt.CycleID),
		zap.String("voter", receipt.Voter),
		zap.String("reward_weight", receipt.RewardWeight.String()),
		zap.String("gm_weight", receipt.GMWeight.String()))
	writeJSON(w, http.StatusCreated, receipt)
}

// ClaimReward handles POST requests paying out a voter's reward for an ended cycle
func (h *Handler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	reward, err := h.Ledger.ClaimReward(cycleID, mux.Vars(r)["voter"])
	if err != nil {
		writeError(w, "Failed to claim reward", err)
		return
	}
	logger.Logger.Info("Reward claimed",
		zap.Uint64("cycle_id", cycleID),
		zap.String("voter", reward.Voter),
		zap.String("amount", reward.Total.String()))
	writeJSON(w, http.StatusOK, reward)
}

// GetCycle returns a cycle's definition, weight totals and quadratic setting
func (h *Handler) GetCycle(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Cycles.Cycle(cycleID)
	if err != nil {
		writeError(w, "Failed to get cycle", err)
		return
	}
	totals, err := h.Ledger.CycleTotals(cycleID)
	if err != nil {
		writeError(w, "Failed to get cycle totals", err)
		return
	}
	disabled, err := h.Ledger.IsQuadraticDisabledForCycle(cycleID)
	if err != nil {
		writeError(w, "Failed to get quadratic setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cycle":              c,
		"totals":             totals,
		"quadratic_disabled": disabled,
	})
}

// GetCurrentCycle returns the id of the open cycle, 0 before the first one starts
func (h *Handler) GetCurrentCycle(w http.ResponseWriter, r *http.Request) {
	id, err := h.Cycles.Current()
	if err != nil {
		writeError(w, "Failed to get current cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"cycle_id": id})
}

// GetReward previews a voter's share of both pools of a cycle
func (h *Handler) GetReward(w http.ResponseWriter, r *http.Request) {
	cycleID, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	reward, err := h.Ledger.Reward(cycleID, mux.Vars(r)["voter"])
	if err != nil {
		writeError(w, "Failed to compute reward", err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

// GetBalance returns an account's balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	bal, err := h.Bank.BalanceOf(address)
	if err != nil {
		writeError(w, "Failed to get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address": models.NormalizeAddress(address),
		"balance": bal,
	})
}

// ListEvents returns journaled events, filtered by ?account=, ?type=, ?cycle= and ?limit=
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := journal.Filter{
		Account: q.Get("account"),
		Type:    models.EventType(q.Get("type")),
	}
	if raw := q.Get("cycle"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cycle"})
			return
		}
		f.CycleID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	events, err := h.Journal.List(f)
	if err != nil {
		writeError(w, "Failed to list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
