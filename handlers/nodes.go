package handlers

import (
	"net/http"

	"gm-rewards/models"
)

type registerNodeRequest struct {
	ID    uint64      `json:"id"`
	Owner string      `json:"owner"`
	Tier  models.Tier `json:"tier"`
}

type managerRequest struct {
	Manager string `json:"manager"`
}

// RegisterNode handles POST requests adding a node to the registry
func (h *Handler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var req registerNodeRequest
	if !decode(w, r, &req) {
		return
	}
	node, err := h.Registry.Register(caller(r), req.ID, req.Owner, req.Tier)
	if err != nil {
		writeError(w, "Failed to register node", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Node registered successfully",
		"node":    node,
	})
}

// GetNode returns a registry node
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	node, err := h.Registry.Get(id)
	if err != nil {
		writeError(w, "Failed to get node", err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// TransferNode handles POST requests handing a node to a new holder
func (h *Handler) TransferNode(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Registry.Transfer(caller(r), id, req.To); err != nil {
		writeError(w, "Failed to transfer node", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Node transferred successfully"})
}

// SetNodeManager handles POST requests delegating a node
func (h *Handler) SetNodeManager(w http.ResponseWriter, r *http.Request) {
	id, ok := uintVar(w, r, "id")
	if !ok {
		return
	}
	var req managerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Registry.SetManager(caller(r), id, req.Manager); err != nil {
		writeError(w, "Failed to set node manager", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Node manager updated successfully"})
}
