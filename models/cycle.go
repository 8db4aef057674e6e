package models

import "github.com/shopspring/decimal"

// Ballot identifies one of the two parallel ballots
type Ballot string

const (
	BallotAllocation Ballot = "allocation"
	BallotProposal   Ballot = "proposal"
)

// Valid reports whether b is a known ballot kind
func (b Ballot) Valid() bool {
	return b == BallotAllocation || b == BallotProposal
}

// Cycle is a voting period as defined by the cycle oracle
type Cycle struct {
	ID          uint64          `json:"id"`
	StartBlock  uint64          `json:"start_block"` // snapshot block
	GenericPool decimal.Decimal `json:"generic_pool"`
	GMPool      decimal.Decimal `json:"gm_pool"`
}

// CycleTotals are the running weight totals of a cycle
type CycleTotals struct {
	CycleID       uint64          `json:"cycle_id"`
	TotalWeight   decimal.Decimal `json:"total_weight"`
	TotalGMWeight decimal.Decimal `json:"total_gm_weight"`
	Voters        int             `json:"voters"`
}

// VoterWeights are one voter's weights within a cycle
type VoterWeights struct {
	CycleID  uint64          `json:"cycle_id"`
	Voter    string          `json:"voter"`
	Weight   decimal.Decimal `json:"weight"`
	GMWeight decimal.Decimal `json:"gm_weight"`
	Claimed  bool            `json:"claimed"`
}

// Vote is a vote reported by a ballot subsystem
type Vote struct {
	CycleID           uint64          `json:"cycle_id"`
	Voter             string          `json:"voter"`
	RawVotes          decimal.Decimal `json:"raw_votes"`
	WeightedVotesHint decimal.Decimal `json:"weighted_votes_hint"`
	Ballot            Ballot          `json:"ballot"`
	ItemID            string          `json:"item_id"` // proposal or allocation item voted on
}

// VoteReceipt reports what a registered vote contributed
type VoteReceipt struct {
	CycleID      uint64          `json:"cycle_id"`
	Voter        string          `json:"voter"`
	RewardWeight decimal.Decimal `json:"reward_weight"`
	GMWeight     decimal.Decimal `json:"gm_weight"`
	TokenID      uint64          `json:"token_id"`
	Level        int             `json:"level"`
	Quadratic    bool            `json:"quadratic"`
}

// Reward is a voter's share of both pools of a cycle
type Reward struct {
	CycleID uint64          `json:"cycle_id"`
	Voter   string          `json:"voter"`
	Generic decimal.Decimal `json:"generic"`
	GM      decimal.Decimal `json:"gm"`
	Total   decimal.Decimal `json:"total"`
	Claimed bool            `json:"claimed"`
}
