package journal_test

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gm-rewards/journal"
	"gm-rewards/models"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openJournal(t)

	j.Record([]models.Event{
		{Block: 4, Type: models.EventTokenMinted, Account: "0xa1", TokenID: 1},
		{Block: 4, Type: models.EventTokenSelected, Account: "0xa1", TokenID: 1},
	})
	j.Record([]models.Event{
		{Block: 5, Type: models.EventFundsMoved, Account: "0xb0", Counterparty: "0xa1", Amount: decimal.RequireFromString("123456789012345678901234567890")},
	})
	j.Record([]models.Event{
		{Block: 6, Type: models.EventVoteRegistered, Account: "0xb0", CycleID: 2, Amount: decimal.NewFromInt(7)},
	})
	j.Record(nil)

	all, err := j.List(journal.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, uint64(6), all[0].Block)
	require.Equal(t, models.EventTokenMinted, all[3].Type)

	mine, err := j.List(journal.Filter{Account: "0xA1"})
	require.NoError(t, err)
	require.Len(t, mine, 3)
	require.Equal(t, "123456789012345678901234567890", mine[0].Amount.String())

	votes, err := j.List(journal.Filter{CycleID: 2})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	require.Equal(t, models.EventVoteRegistered, votes[0].Type)

	minted, err := j.List(journal.Filter{Type: models.EventTokenMinted, Account: "0xa1"})
	require.NoError(t, err)
	require.Len(t, minted, 1)

	limited, err := j.List(journal.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestJournalsAreIsolated(t *testing.T) {
	a := openJournal(t)
	b := openJournal(t)

	a.Record([]models.Event{{Block: 1, Type: models.EventCycleStarted, CycleID: 1}})

	got, err := b.List(journal.Filter{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.sqlite")
	j, err := journal.Open(path)
	require.NoError(t, err)
	j.Record([]models.Event{{Block: 1, Type: models.EventRoleGranted, Account: "0xad", Detail: "admin"}})
	require.NoError(t, j.Close())

	j, err = journal.Open(path)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.List(journal.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "admin", got[0].Detail)
}
