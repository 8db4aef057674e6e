package rewards_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gm-rewards/bank"
	"gm-rewards/config"
	"gm-rewards/cycles"
	"gm-rewards/db"
	"gm-rewards/errs"
	"gm-rewards/leveling"
	"gm-rewards/migrate"
	"gm-rewards/models"
	"gm-rewards/registry"
	"gm-rewards/repository"
	"gm-rewards/rewards"
)

const (
	admin     = "0x00000000000000000000000000000000000000ad"
	registrar = "0x00000000000000000000000000000000000000b1"
	collector = "0x00000000000000000000000000000000000000c0"
	vault     = "0x00000000000000000000000000000000000000f0"
	alice     = "0x00000000000000000000000000000000000000a1"
	bob       = "0x00000000000000000000000000000000000000b0"
	carol     = "0x00000000000000000000000000000000000000c1"
)

var wad = decimal.New(1, 18)

type fixture struct {
	store  *repository.Store
	bank   *bank.Bank
	nodes  *registry.Registry
	oracle *cycles.Oracle
	engine *leveling.Engine
	ledger *rewards.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ldb, err := db.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	store := repository.NewStore(ldb)
	cfg := &config.Config{
		Admin:          config.AdminConfig{Address: admin},
		VoteRegistrars: []string{registrar},
		Leveling: config.LevelingConfig{
			Collector:  collector,
			MaxLevel:   3,
			Thresholds: []string{"10000", "25000"},
			NodeBonus:  map[string]int{"1": 2},
		},
		Rewards: config.RewardsConfig{
			Vault: vault,
			Multipliers: map[string]string{
				"1": "1000000000000000000",
				"3": "2000000000000000000",
			},
		},
	}
	_, err = migrate.Run(store, cfg)
	require.NoError(t, err)

	f := &fixture{store: store, bank: bank.New(store), nodes: registry.New(store)}
	f.oracle = cycles.New(store, f.bank, vault)
	f.engine = leveling.NewEngine(store, f.nodes, f.bank, leveling.ParticipationRecord{}, leveling.Config{Collector: collector})
	f.ledger = rewards.NewLedger(store, f.engine, f.oracle, f.bank, f.oracle.Vault())
	return f
}

func (f *fixture) startCycle(t *testing.T, generic, gm int64) uint64 {
	t.Helper()
	total := decimal.NewFromInt(generic + gm)
	if total.IsPositive() {
		require.NoError(t, f.bank.Credit(admin, admin, total))
	}
	c, err := f.oracle.StartCycle(admin, decimal.NewFromInt(generic), decimal.NewFromInt(gm))
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) vote(t *testing.T, cycleID uint64, voter string, raw int64, ballot models.Ballot, item string) *models.VoteReceipt {
	t.Helper()
	receipt, err := f.ledger.RegisterVote(registrar, models.Vote{
		CycleID:  cycleID,
		Voter:    voter,
		RawVotes: decimal.NewFromInt(raw),
		Ballot:   ballot,
		ItemID:   item,
	})
	require.NoError(t, err)
	return receipt
}

func (f *fixture) balance(t *testing.T, addr string) decimal.Decimal {
	t.Helper()
	bal, err := f.bank.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func TestQuadraticSplit(t *testing.T) {
	f := newFixture(t)
	c := f.startCycle(t, 100, 0)

	r1 := f.vote(t, c, alice, 1000, models.BallotProposal, "p1")
	r2 := f.vote(t, c, bob, 300, models.BallotProposal, "p1")
	require.True(t, r1.Quadratic)
	require.Equal(t, "31622776601", r1.RewardWeight.String())
	require.Equal(t, "17320508075", r2.RewardWeight.String())

	f.startCycle(t, 0, 0)

	reward, err := f.ledger.ClaimReward(c, alice)
	require.NoError(t, err)
	require.Equal(t, "64", reward.Generic.String())
	require.True(t, reward.GM.IsZero())
	require.True(t, reward.Claimed)

	reward, err = f.ledger.ClaimReward(c, bob)
	require.NoError(t, err)
	require.Equal(t, "35", reward.Total.String())

	require.Equal(t, "64", f.balance(t, alice).String())
	require.Equal(t, "35", f.balance(t, bob).String())
	// truncation dust stays in the vault
	require.Equal(t, "1", f.balance(t, vault).String())
}

func TestQuadraticToggleLandsNextCycle(t *testing.T) {
	f := newFixture(t)
	first := f.startCycle(t, 0, 0)

	require.ErrorIs(t, f.ledger.SetQuadraticDisabled(alice, true), errs.ErrUnauthorized)
	require.NoError(t, f.ledger.SetQuadraticDisabled(admin, true))

	disabled, err := f.ledger.IsQuadraticDisabled()
	require.NoError(t, err)
	require.True(t, disabled)

	disabled, err = f.ledger.IsQuadraticDisabledForCurrentCycle()
	require.NoError(t, err)
	require.False(t, disabled)

	r := f.vote(t, first, alice, 400, models.BallotAllocation, "")
	require.True(t, r.Quadratic)
	require.Equal(t, "20000000000", r.RewardWeight.String())

	second := f.startCycle(t, 0, 0)
	r = f.vote(t, second, alice, 400, models.BallotAllocation, "")
	require.False(t, r.Quadratic)
	require.Equal(t, "400", r.RewardWeight.String())

	disabled, err = f.ledger.IsQuadraticDisabledForCycle(first)
	require.NoError(t, err)
	require.False(t, disabled)
	disabled, err = f.ledger.IsQuadraticDisabledForCycle(second)
	require.NoError(t, err)
	require.True(t, disabled)
}

func TestRegisterVoteRejections(t *testing.T) {
	f := newFixture(t)
	c := f.startCycle(t, 0, 0)

	vote := models.Vote{CycleID: c, Voter: alice, RawVotes: decimal.NewFromInt(1), Ballot: models.BallotProposal}

	_, err := f.ledger.RegisterVote(alice, vote)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	bad := vote
	bad.CycleID = 0
	_, err = f.ledger.RegisterVote(registrar, bad)
	require.ErrorIs(t, err, errs.ErrInvalidCycle)

	bad = vote
	bad.CycleID = c + 5
	_, err = f.ledger.RegisterVote(registrar, bad)
	require.ErrorIs(t, err, errs.ErrInvalidCycle)

	bad = vote
	bad.Voter = models.ZeroAddress
	_, err = f.ledger.RegisterVote(registrar, bad)
	require.ErrorIs(t, err, errs.ErrZeroAddress)

	bad = vote
	bad.Voter = "0xa1:selection"
	_, err = f.ledger.RegisterVote(registrar, bad)
	require.ErrorIs(t, err, errs.ErrInvalidAddress)

	bad = vote
	bad.Ballot = "referendum"
	_, err = f.ledger.RegisterVote(registrar, bad)
	require.ErrorIs(t, err, errs.ErrInvalidBallot)

	f.startCycle(t, 0, 0)
	_, err = f.ledger.RegisterVote(registrar, vote)
	require.ErrorIs(t, err, errs.ErrCycleClosed)
}

func TestZeroVoteIsNoop(t *testing.T) {
	f := newFixture(t)
	c := f.startCycle(t, 10, 0)

	r := f.vote(t, c, alice, 0, models.BallotProposal, "p1")
	require.True(t, r.RewardWeight.IsZero())

	totals, err := f.ledger.CycleTotals(c)
	require.NoError(t, err)
	require.True(t, totals.TotalWeight.IsZero())
	require.Zero(t, totals.Voters)

	// the voter still counts as a participant
	var participated bool
	require.NoError(t, f.store.View(func(tx *repository.Tx) error {
		var err error
		participated, err = tx.HasParticipated(alice)
		return err
	}))
	require.True(t, participated)

	f.startCycle(t, 0, 0)
	_, err = f.ledger.ClaimReward(c, alice)
	require.ErrorIs(t, err, errs.ErrNothingToClaim)
}

func TestClaimRules(t *testing.T) {
	f := newFixture(t)
	c := f.startCycle(t, 50, 0)
	f.vote(t, c, alice, 4, models.BallotProposal, "p1")

	_, err := f.ledger.ClaimReward(c, alice)
	require.ErrorIs(t, err, errs.ErrCycleNotEnded)

	f.startCycle(t, 0, 0)

	_, err = f.ledger.ClaimReward(c, bob)
	require.ErrorIs(t, err, errs.ErrNothingToClaim)

	_, err = f.ledger.ClaimReward(c, models.ZeroAddress)
	require.ErrorIs(t, err, errs.ErrZeroAddress)

	_, err = f.ledger.ClaimReward(0, alice)
	require.ErrorIs(t, err, errs.ErrInvalidCycle)

	preview, err := f.ledger.Reward(c, alice)
	require.NoError(t, err)
	require.Equal(t, "50", preview.Total.String())
	require.False(t, preview.Claimed)

	reward, err := f.ledger.ClaimReward(c, alice)
	require.NoError(t, err)
	require.Equal(t, "50", reward.Total.String())

	_, err = f.ledger.ClaimReward(c, alice)
	require.ErrorIs(t, err, errs.ErrAlreadyClaimed)
	require.Equal(t, "50", f.balance(t, alice).String())

	vw, err := f.ledger.VoterWeights(c, alice)
	require.NoError(t, err)
	require.True(t, vw.Claimed)
}

func TestGMWeightFollowsLevel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bank.Credit(admin, bob, decimal.NewFromInt(25000)))

	_, err := f.engine.Mint(alice)
	require.NoError(t, err)
	bobs, err := f.engine.Mint(bob)
	require.NoError(t, err)
	_, err = f.engine.Upgrade(bob, bobs.ID, decimal.NewFromInt(25000))
	require.NoError(t, err)
	c := f.startCycle(t, 0, 300)

	ra := f.vote(t, c, alice, 1, models.BallotProposal, "p1")
	rb := f.vote(t, c, bob, 1, models.BallotProposal, "p1")
	require.Equal(t, 1, ra.Level)
	require.True(t, ra.GMWeight.Equal(wad))
	require.Equal(t, 3, rb.Level)
	require.True(t, rb.GMWeight.Equal(wad.Mul(decimal.NewFromInt(2))))

	f.startCycle(t, 0, 0)
	gm, err := f.ledger.GetGMReward(c, alice)
	require.NoError(t, err)
	require.Equal(t, "100", gm.String())
	gm, err = f.ledger.GetGMReward(c, bob)
	require.NoError(t, err)
	require.Equal(t, "200", gm.String())
	generic, err := f.ledger.GetReward(c, bob)
	require.NoError(t, err)
	require.True(t, generic.IsZero())
}

func TestGMWeightCountedOncePerItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.nodes.Register(admin, 1, alice, 1)
	require.NoError(t, err)

	first, err := f.engine.Mint(alice)
	require.NoError(t, err)
	c := f.startCycle(t, 0, 0)

	r := f.vote(t, c, alice, 1, models.BallotProposal, "p1")
	require.True(t, r.GMWeight.Equal(wad))

	// same token, same item: reward weight counts, GM weight does not
	r = f.vote(t, c, alice, 1, models.BallotProposal, "p1")
	require.True(t, r.GMWeight.IsZero())
	require.True(t, r.RewardWeight.IsPositive())

	r = f.vote(t, c, alice, 1, models.BallotProposal, "p2")
	require.True(t, r.GMWeight.Equal(wad))
	r = f.vote(t, c, alice, 1, models.BallotAllocation, "p1")
	require.True(t, r.GMWeight.Equal(wad))

	totals, err := f.ledger.CycleTotals(c)
	require.NoError(t, err)
	require.True(t, totals.TotalGMWeight.Equal(wad.Mul(decimal.NewFromInt(3))))
	require.Equal(t, 1, totals.Voters)

	_, err = f.engine.AttachNode(alice, 1, first.ID)
	require.NoError(t, err)
	r = f.vote(t, c, alice, 1, models.BallotProposal, "p3")
	require.Equal(t, 2, r.Level)
	require.True(t, r.GMWeight.IsZero(), "level 2 has no multiplier")

	require.NoError(t, f.ledger.SetMultiplier(admin, 2, wad))
	r = f.vote(t, c, alice, 1, models.BallotProposal, "p4")
	require.True(t, r.GMWeight.Equal(wad))

	// a backing node cannot be carried to a fresh token to count again
	_, err = f.engine.DetachNode(alice, 1, first.ID)
	require.NoError(t, err)
	second, err := f.engine.Mint(alice)
	require.NoError(t, err)
	_, err = f.engine.AttachNode(alice, 1, second.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.Select(alice, second.ID))

	r = f.vote(t, c, alice, 1, models.BallotProposal, "p4")
	require.Equal(t, second.ID, r.TokenID)
	require.True(t, r.GMWeight.IsZero())

	r = f.vote(t, c, alice, 1, models.BallotProposal, "p5")
	require.True(t, r.GMWeight.Equal(wad))
}

func TestGMWeightItemIDsAreDistinct(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Mint(alice)
	require.NoError(t, err)
	c := f.startCycle(t, 0, 0)

	for _, item := range []string{"", "-", "p1", "p1:token:1", "1:p1"} {
		r := f.vote(t, c, alice, 1, models.BallotProposal, item)
		require.True(t, r.GMWeight.Equal(wad), "item %q", item)
	}
	r := f.vote(t, c, alice, 1, models.BallotProposal, "")
	require.True(t, r.GMWeight.IsZero())
	r = f.vote(t, c, alice, 1, models.BallotProposal, "p1:token:1")
	require.True(t, r.GMWeight.IsZero())
}

func TestVoterWeightsSumToTotals(t *testing.T) {
	f := newFixture(t)
	for _, who := range []string{alice, bob, carol} {
		_, err := f.engine.Mint(who)
		require.NoError(t, err)
	}
	c := f.startCycle(t, 1000, 1000)

	raw := map[string]int64{alice: 7, bob: 1234, carol: 99999}
	for who, n := range raw {
		f.vote(t, c, who, n, models.BallotProposal, "p1")
		f.vote(t, c, who, n*2, models.BallotAllocation, "a1")
	}

	totals, err := f.ledger.CycleTotals(c)
	require.NoError(t, err)
	voters, err := f.store.CycleVoters(c)
	require.NoError(t, err)
	require.Len(t, voters, 3)
	require.Equal(t, 3, totals.Voters)

	weight, gm := decimal.Zero, decimal.Zero
	for _, vw := range voters {
		weight = weight.Add(vw.Weight)
		gm = gm.Add(vw.GMWeight)
	}
	require.True(t, weight.Equal(totals.TotalWeight))
	require.True(t, gm.Equal(totals.TotalGMWeight))

	f.startCycle(t, 0, 0)
	paid := decimal.Zero
	for who := range raw {
		reward, err := f.ledger.ClaimReward(c, who)
		require.NoError(t, err)
		paid = paid.Add(reward.Total)
	}
	require.True(t, paid.LessThanOrEqual(decimal.NewFromInt(2000)))
	require.True(t, f.balance(t, vault).Add(paid).Equal(decimal.NewFromInt(2000)))
}

func TestSetMultiplier(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.ledger.SetMultiplier(alice, 2, wad), errs.ErrUnauthorized)
	require.ErrorIs(t, f.ledger.SetMultiplier(admin, 0, wad), errs.ErrInvalidLevel)
	require.ErrorIs(t, f.ledger.SetMultiplier(admin, 2, decimal.NewFromFloat(0.5)), errs.ErrInvalidAmount)

	require.NoError(t, f.ledger.SetMultiplier(admin, 2, wad))
	require.NoError(t, f.ledger.SetMultiplier(admin, 3, decimal.Zero))

	m, err := f.ledger.Multipliers()
	require.NoError(t, err)
	require.Len(t, m, 2)
	require.True(t, m[1].Equal(wad))
	require.True(t, m[2].Equal(wad))
	_, ok := m[3]
	require.False(t, ok)
}
