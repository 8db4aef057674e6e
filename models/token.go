package models

import "github.com/shopspring/decimal"

// Token is a leveled membership token
type Token struct {
	ID             uint64          `json:"id"`
	Owner          string          `json:"owner"`
	TotalDonated   decimal.Decimal `json:"total_donated"`    // monotonically non-decreasing
	AttachedNodeID uint64          `json:"attached_node_id"` // 0 when detached
	MintedAt       uint64          `json:"minted_at"`        // block of mint
}

// Attached reports whether a node is attached to the token
func (t *Token) Attached() bool {
	return t.AttachedNodeID != 0
}

// TokenView is a token with its level evaluated against current state
type TokenView struct {
	Token
	BaseLevel  int  `json:"base_level"`
	BonusLevel int  `json:"bonus_level"`
	Level      int  `json:"level"`
	NodeValid  bool `json:"node_valid"`
}

// Account tracks the tokens held by an address and which one is selected
type Account struct {
	Address  string   `json:"address"`
	Selected uint64   `json:"selected"` // 0 when the account holds nothing
	Tokens   []uint64 `json:"tokens"`   // ascending
}

// Checkpoint is one entry of an append-only history log
type Checkpoint struct {
	Block uint64 `json:"block"`
	Value uint64 `json:"value"`
}

// LevelParams holds the admin-settable leveling configuration
type LevelParams struct {
	// Thresholds[i] is the donation needed for level i+2; level 1 is the floor
	Thresholds []decimal.Decimal `json:"thresholds"`
	MaxLevel   int               `json:"max_level"`
	NodeBonus  map[Tier]int      `json:"node_bonus"`
	MintPaused bool              `json:"mint_paused"`
}
