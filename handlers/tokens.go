package handlers

import (
	"net/http"
	"strconv"

	"gm-rewards/logger"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type upgradeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	To string `json:"to"`
}

type nodeRequest struct {
	NodeID uint64 `json:"node_id"`
}

// Mint handles POST requests to mint a membership token for the caller
func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	tok, err := h.Engine.Mint(caller(r))
	if err != nil {
		writeError(w, "Failed to mint token", err)
		return
	}
	logger.Logger.Info("Minted token", zap.Uint64("token_id", tok.ID), zap.String("owner", tok.Owner))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Token minted successfully",
		"token":   tok,
	})
}

// GetToken returns a token with its level evaluated against current node state
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	view, err := h.Engine.Token(id)
	if err != nil {
		writeError(w, "Failed to get token", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Upgrade handles POST requests donating value into a token
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req upgradeRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Engine.Upgrade(caller(r), id, req.Amount)
	if err != nil {
		writeError(w, "Failed to upgrade token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Token upgraded successfully",
		"token":   view,
	})
}

// Transfer handles POST requests moving a token to another account
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Engine.Transfer(caller(r), req.To, id); err != nil {
		writeError(w, "Failed to transfer token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token transferred successfully"})
}

// Burn handles POST requests destroying a token
func (h *Handler) Burn(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.Engine.Burn(caller(r), id); err != nil {
		writeError(w, "Failed to burn token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token burned successfully"})
}

// AttachNode handles POST requests binding a registry node to a token
func (h *Handler) AttachNode(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Engine.AttachNode(caller(r), req.NodeID, id)
	if err != nil {
		writeError(w, "Failed to attach node", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Node attached successfully",
		"token":   view,
	})
}

// DetachNode handles POST requests unbinding a registry node from a token
func (h *Handler) DetachNode(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Engine.DetachNode(caller(r), req.NodeID, id)
	if err != nil {
		writeError(w, "Failed to detach node", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Node detached successfully",
		"token":   view,
	})
}

// Select handles POST requests making a token the caller's selection
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.Engine.Select(caller(r), id); err != nil {
		writeError(w, "Failed to select token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token selected successfully"})
}

// GetAccount returns an account's tokens and current selection
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Engine.Account(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// GetSelection answers which token an account had selected at ?block=N, or its full history without it
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	raw := r.URL.Query().Get("block")
	if raw == "" {
		history, err := h.Engine.SelectionHistory(address)
		if err != nil {
			writeError(w, "Failed to get selection history", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"address": address,
			"history": history,
		})
		return
	}

	block, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid block"})
		return
	}
	tokenID, err := h.Engine.SelectedAt(address, block)
	if err != nil {
		writeError(w, "Failed to get selection", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":  address,
		"block":    block,
		"token_id": tokenID,
	})
}
