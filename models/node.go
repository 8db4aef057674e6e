package models

// Tier is the boost class of a registry node
type Tier uint8

// MaxTier is the highest tier a registry node may carry
const MaxTier Tier = 8

// Node is a boost-granting token held in the node registry
type Node struct {
	ID           uint64 `json:"id"`            // registry id, never 0
	Owner        string `json:"owner"`         // current holder
	Manager      string `json:"manager"`       // delegated manager, empty means the owner
	Tier         Tier   `json:"tier"`          // bonus class
	RegisteredAt uint64 `json:"registered_at"` // block of registration
}
