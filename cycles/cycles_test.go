package cycles_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gm-rewards/access"
	"gm-rewards/bank"
	"gm-rewards/cycles"
	"gm-rewards/db"
	"gm-rewards/errs"
	"gm-rewards/repository"
)

const (
	admin = "0x00000000000000000000000000000000000000ad"
	alice = "0x00000000000000000000000000000000000000a1"
	vault = "0x00000000000000000000000000000000000000f0"
)

type fixture struct {
	store  *repository.Store
	bank   *bank.Bank
	oracle *cycles.Oracle
}

func newFixture(t *testing.T, vaultAddr string) *fixture {
	t.Helper()
	ldb, err := db.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	store := repository.NewStore(ldb)
	require.NoError(t, store.Update(func(tx *repository.Tx) error {
		return access.Bootstrap(tx, access.RoleAdmin, admin)
	}))
	b := bank.New(store)
	return &fixture{store: store, bank: b, oracle: cycles.New(store, b, vaultAddr)}
}

func (f *fixture) ended(t *testing.T, id uint64) bool {
	t.Helper()
	var ended bool
	require.NoError(t, f.store.View(func(tx *repository.Tx) error {
		var err error
		ended, err = f.oracle.IsCycleEnded(tx, id)
		return err
	}))
	return ended
}

func (f *fixture) balance(t *testing.T, addr string) string {
	t.Helper()
	bal, err := f.bank.BalanceOf(addr)
	require.NoError(t, err)
	return bal.String()
}

func TestCycleBoundaries(t *testing.T) {
	f := newFixture(t, vault)

	cur, err := f.oracle.Current()
	require.NoError(t, err)
	require.Zero(t, cur)
	_, err = f.oracle.Cycle(1)
	require.ErrorIs(t, err, errs.ErrInvalidCycle)

	first, err := f.oracle.StartCycle(admin, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.ID)
	require.False(t, f.ended(t, 0))
	require.False(t, f.ended(t, 1))

	second, err := f.oracle.StartCycle(admin, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, uint64(2), second.ID)
	require.Greater(t, second.StartBlock, first.StartBlock)

	// a cycle ends exactly when a later one starts
	require.True(t, f.ended(t, 1))
	require.False(t, f.ended(t, 2))
	require.False(t, f.ended(t, 3))

	require.NoError(t, f.store.View(func(tx *repository.Tx) error {
		next, err := f.oracle.NextCycle(tx)
		require.NoError(t, err)
		require.Equal(t, uint64(3), next)

		snap, err := f.oracle.SnapshotBlock(tx, 2)
		require.NoError(t, err)
		require.Equal(t, second.StartBlock, snap)

		_, err = f.oracle.SnapshotBlock(tx, 0)
		require.ErrorIs(t, err, errs.ErrInvalidCycle)
		_, err = f.oracle.GenericPoolAmount(tx, 3)
		require.ErrorIs(t, err, errs.ErrInvalidCycle)
		return nil
	}))

	cur, err = f.oracle.Current()
	require.NoError(t, err)
	require.Equal(t, uint64(2), cur)
}

func TestStartCycleFundsPools(t *testing.T) {
	f := newFixture(t, vault)
	require.NoError(t, f.bank.Credit(admin, admin, decimal.NewFromInt(50)))

	c, err := f.oracle.StartCycle(admin, decimal.NewFromInt(30), decimal.NewFromInt(20))
	require.NoError(t, err)
	require.Equal(t, "0", f.balance(t, admin))
	require.Equal(t, "50", f.balance(t, vault))

	require.NoError(t, f.store.View(func(tx *repository.Tx) error {
		generic, err := f.oracle.GenericPoolAmount(tx, c.ID)
		require.NoError(t, err)
		require.Equal(t, "30", generic.String())
		gm, err := f.oracle.GMPoolAmount(tx, c.ID)
		require.NoError(t, err)
		require.Equal(t, "20", gm.String())
		return nil
	}))
}

func TestStartCycleFundingFailureRollsBack(t *testing.T) {
	f := newFixture(t, vault)
	require.NoError(t, f.bank.Credit(admin, admin, decimal.NewFromInt(50)))
	height, err := f.store.Block()
	require.NoError(t, err)

	_, err = f.oracle.StartCycle(admin, decimal.NewFromInt(40), decimal.NewFromInt(20))
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	cur, err := f.oracle.Current()
	require.NoError(t, err)
	require.Zero(t, cur)
	after, err := f.store.Block()
	require.NoError(t, err)
	require.Equal(t, height, after)
	require.Equal(t, "50", f.balance(t, admin))
	require.Equal(t, "0", f.balance(t, vault))
}

func TestStartCycleAdminAsVault(t *testing.T) {
	f := newFixture(t, admin)

	// pools are only recorded when the vault actually holds them
	_, err := f.oracle.StartCycle(admin, decimal.NewFromInt(10), decimal.Zero)
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	require.NoError(t, f.bank.Credit(admin, admin, decimal.NewFromInt(10)))
	c, err := f.oracle.StartCycle(admin, decimal.NewFromInt(10), decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, "10", c.GenericPool.String())
	require.Equal(t, "10", f.balance(t, admin))
}

func TestStartCycleRejections(t *testing.T) {
	f := newFixture(t, vault)

	_, err := f.oracle.StartCycle(alice, decimal.Zero, decimal.Zero)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = f.oracle.StartCycle(admin, decimal.NewFromInt(-1), decimal.Zero)
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	cur, err := f.oracle.Current()
	require.NoError(t, err)
	require.Zero(t, cur)
}
