package models

import "github.com/shopspring/decimal"

// EventType names a committed state change
type EventType string

const (
	EventTokenMinted      EventType = "TokenMinted"
	EventTokenUpgraded    EventType = "TokenUpgraded"
	EventTokenTransferred EventType = "TokenTransferred"
	EventTokenBurned      EventType = "TokenBurned"
	EventTokenSelected    EventType = "TokenSelected"
	EventNodeAttached     EventType = "NodeAttached"
	EventNodeDetached     EventType = "NodeDetached"
	EventNodeRegistered   EventType = "NodeRegistered"
	EventNodeTransferred  EventType = "NodeTransferred"
	EventNodeManagerSet   EventType = "NodeManagerSet"
	EventVoteRegistered   EventType = "VoteRegistered"
	EventRewardClaimed    EventType = "RewardClaimed"
	EventQuadraticToggled EventType = "QuadraticToggled"
	EventMultiplierSet    EventType = "MultiplierSet"
	EventLevelParamsSet   EventType = "LevelParamsSet"
	EventCycleStarted     EventType = "CycleStarted"
	EventRoleGranted      EventType = "RoleGranted"
	EventRoleRevoked      EventType = "RoleRevoked"
	EventFundsMoved       EventType = "FundsMoved"
)

// Event is emitted by an operation and delivered to sinks once its block commits
type Event struct {
	Block        uint64          `json:"block"`
	Type         EventType       `json:"type"`
	Account      string          `json:"account,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	TokenID      uint64          `json:"token_id,omitempty"`
	NodeID       uint64          `json:"node_id,omitempty"`
	CycleID      uint64          `json:"cycle_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Detail       string          `json:"detail,omitempty"`
}
