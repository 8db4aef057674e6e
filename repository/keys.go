package repository

import (
	"fmt"

	"gm-rewards/models"
)

const (
	keyBlock         = "meta:block"
	keySchema        = "meta:schema"
	keyNextToken     = "meta:next_token"
	keyCurrentCycle  = "meta:current_cycle"
	keyLevelParams   = "params:levels"
	keyMultipliers   = "params:multipliers"
	prefixCycleVoter = "cyclevoter:"
)

// QuadraticLog is the checkpoint log of the quadratic-disabled flag
const QuadraticLog = "quadratic"

// SelectionLog returns the checkpoint log name holding addr's selection history
func SelectionLog(addr string) string {
	return "sel:" + addr
}

func tokenKey(id uint64) string {
	return fmt.Sprintf("token:%020d", id)
}

func accountKey(addr string) string {
	return "account:" + addr
}

func checkpointKey(log string, idx uint64) string {
	return fmt.Sprintf("ckpt:%s:%020d", log, idx)
}

func checkpointLenKey(log string) string {
	return "ckptlen:" + log
}

func nodeKey(id uint64) string {
	return fmt.Sprintf("node:%020d", id)
}

func attachmentKey(nodeID uint64) string {
	return fmt.Sprintf("attach:%020d", nodeID)
}

func cycleKey(id uint64) string {
	return fmt.Sprintf("cycle:%020d", id)
}

func cycleTotalsKey(id uint64) string {
	return fmt.Sprintf("cycletotals:%020d", id)
}

func cycleVoterPrefix(id uint64) string {
	return fmt.Sprintf("%s%020d:", prefixCycleVoter, id)
}

func cycleVoterKey(id uint64, voter string) string {
	return cycleVoterPrefix(id) + voter
}

// ballot items are caller-supplied, so they are length-prefixed
func gmItemPrefix(cycleID uint64, ballot models.Ballot, item string) string {
	return fmt.Sprintf("gmused:%020d:%s:%d:%s:", cycleID, ballot, len(item), item)
}

func gmTokenKey(cycleID uint64, ballot models.Ballot, item string, tokenID uint64) string {
	return fmt.Sprintf("%stoken:%d", gmItemPrefix(cycleID, ballot, item), tokenID)
}

func gmNodeKey(cycleID uint64, ballot models.Ballot, item string, nodeID uint64) string {
	return fmt.Sprintf("%snode:%d", gmItemPrefix(cycleID, ballot, item), nodeID)
}

func participatedKey(addr string) string {
	return "participated:" + addr
}

func balanceKey(addr string) string {
	return "balance:" + addr
}

func roleKey(role, addr string) string {
	return "role:" + role + ":" + addr
}
