package handlers

import (
	"net/http"

	"gm-rewards/logger"
	"gm-rewards/models"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type selectForRequest struct {
	Account string `json:"account"`
	TokenID uint64 `json:"token_id"`
}

type thresholdsRequest struct {
	Thresholds []decimal.Decimal `json:"thresholds"`
}

type maxLevelRequest struct {
	MaxLevel int `json:"max_level"`
}

type nodeBonusRequest struct {
	Tier  models.Tier `json:"tier"`
	Level int         `json:"level"`
}

type mintPausedRequest struct {
	Paused bool `json:"paused"`
}

type multiplierRequest struct {
	Level  int             `json:"level"`
	Factor decimal.Decimal `json:"factor"`
}

type quadraticRequest struct {
	Disabled bool `json:"disabled"`
}

type startCycleRequest struct {
	GenericPool decimal.Decimal `json:"generic_pool"`
	GMPool      decimal.Decimal `json:"gm_pool"`
}

type roleRequest struct {
	Role    string `json:"role"`
	Address string `json:"address"`
	Revoke  bool   `json:"revoke"`
}

type creditRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// SelectFor lets an admin correct an account's selection
func (h *Handler) SelectFor(w http.ResponseWriter, r *http.Request) {
	var req selectForRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.SelectFor(caller(r), req.Account, req.TokenID); err != nil {
		writeError(w, "Failed to select token for account", err)
		return
	}
	writeMessage(w, "Selection updated successfully")
}

// SetThresholds replaces the donation thresholds
func (h *Handler) SetThresholds(w http.ResponseWriter, r *http.Request) {
	var req thresholdsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.SetThresholds(caller(r), req.Thresholds); err != nil {
		writeError(w, "Failed to set thresholds", err)
		return
	}
	writeMessage(w, "Thresholds updated successfully")
}

// SetMaxLevel moves the level ceiling
func (h *Handler) SetMaxLevel(w http.ResponseWriter, r *http.Request) {
	var req maxLevelRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.SetMaxLevel(caller(r), req.MaxLevel); err != nil {
		writeError(w, "Failed to set max level", err)
		return
	}
	writeMessage(w, "Max level updated successfully")
}

// SetNodeBonus sets the level granted by a node tier
func (h *Handler) SetNodeBonus(w http.ResponseWriter, r *http.Request) {
	var req nodeBonusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.SetNodeBonus(caller(r), req.Tier, req.Level); err != nil {
		writeError(w, "Failed to set node bonus", err)
		return
	}
	writeMessage(w, "Node bonus updated successfully")
}

// SetMintPaused pauses or resumes minting
func (h *Handler) SetMintPaused(w http.ResponseWriter, r *http.Request) {
	var req mintPausedRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.SetMintPaused(caller(r), req.Paused); err != nil {
		writeError(w, "Failed to set mint pause", err)
		return
	}
	writeMessage(w, "Mint pause updated successfully")
}

// GetParams returns the leveling configuration and multiplier table
func (h *Handler) GetParams(w http.ResponseWriter, r *http.Request) {
	params, err := h.Engine.Params()
	if err != nil {
		writeError(w, "Failed to get level params", err)
		return
	}
	multipliers, err := h.Ledger.Multipliers()
	if err != nil {
		writeError(w, "Failed to get multipliers", err)
		return
	}
	disabled, err := h.Ledger.IsQuadraticDisabled()
	if err != nil {
		writeError(w, "Failed to get quadratic setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leveling":           params,
		"multipliers":        multipliers,
		"quadratic_disabled": disabled,
	})
}

// SetMultiplier sets the GM factor for a level
func (h *Handler) SetMultiplier(w http.ResponseWriter, r *http.Request) {
	var req multiplierRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Ledger.SetMultiplier(caller(r), req.Level, req.Factor); err != nil {
		writeError(w, "Failed to set multiplier", err)
		return
	}
	writeMessage(w, "Multiplier updated successfully")
}

// SetQuadratic flips quadratic rewarding starting with the next cycle
func (h *Handler) SetQuadratic(w http.ResponseWriter, r *http.Request) {
	var req quadraticRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Ledger.SetQuadraticDisabled(caller(r), req.Disabled); err != nil {
		writeError(w, "Failed to toggle quadratic rewarding", err)
		return
	}
	logger.Logger.Info("Quadratic rewarding toggled", zap.Bool("disabled", req.Disabled))
	writeMessage(w, "Quadratic setting updated successfully")
}

// StartCycle closes the open cycle and opens the next one with the given pools
func (h *Handler) StartCycle(w http.ResponseWriter, r *http.Request) {
	var req startCycleRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Cycles.StartCycle(caller(r), req.GenericPool, req.GMPool)
	if err != nil {
		writeError(w, "Failed to start cycle", err)
		return
	}
	logger.Logger.Info("Cycle started", zap.Uint64("cycle_id", c.ID), zap.Uint64("start_block", c.StartBlock))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Cycle started successfully",
		"cycle":   c,
	})
}

// SetRole grants or revokes a capability
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !decode(w, r, &req) {
		return
	}
	var err error
	if req.Revoke {
		err = h.Access.Revoke(caller(r), req.Role, req.Address)
	} else {
		err = h.Access.Grant(caller(r), req.Role, req.Address)
	}
	if err != nil {
		writeError(w, "Failed to update role", err)
		return
	}
	writeMessage(w, "Role updated successfully")
}

// HasRole reports whether an address holds a capability
func (h *Handler) HasRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	has, err := h.Access.Has(vars["role"], vars["address"])
	if err != nil {
		writeError(w, "Failed to check role", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":    vars["role"],
		"address": models.NormalizeAddress(vars["address"]),
		"granted": has,
	})
}

// Credit mints funds into an account
func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Bank.Credit(caller(r), req.To, req.Amount); err != nil {
		writeError(w, "Failed to credit account", err)
		return
	}
	writeMessage(w, "Account credited successfully")
}

// SendFunds moves funds from the caller to another account
func (h *Handler) SendFunds(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Bank.Send(caller(r), req.To, req.Amount); err != nil {
		writeError(w, "Failed to send funds", err)
		return
	}
	writeMessage(w, "Funds sent successfully")
}
