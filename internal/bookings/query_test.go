package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SearchBlankMatchesNothing(t *testing.T) {
	ledger, _ := newTestLedger(t)
	_, err := ledger.Create(context.Background(), aliceFields())
	require.NoError(t, err)

	for _, q := range []string{"", "   "} {
		got := ledger.Search(context.Background(), q)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestLedger_SearchAcrossFields(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	alice := aliceFields()
	alice.SpecialRequirements = "Window seat, nut allergy"
	bob := aliceFields()
	bob.Name = "Bob Stone"
	bob.Contact = "+1 555 0100"
	bob.Date = "2025-07-04"
	for _, f := range []Fields{alice, bob} {
		_, err := ledger.Create(ctx, f)
		require.NoError(t, err)
	}

	cases := map[string][]string{
		"ALICE":       {"BK0001"},
		"nut":         {"BK0001"},
		"555":         {"BK0002"},
		"2025-07":     {"BK0002"},
		"19:00":       {"BK0001", "BK0002"},
		"nobody here": nil,
	}
	for q, want := range cases {
		var ids []string
		for _, b := range ledger.Search(ctx, q) {
			ids = append(ids, b.ID)
		}
		assert.Equal(t, want, ids, "query %q", q)
	}
}

func TestLedger_StatsEmpty(t *testing.T) {
	ledger, _ := newTestLedger(t)
	s := ledger.Stats(context.Background())
	assert.Equal(t, Statistics{}, s)
	assert.Zero(t, s.SuccessRate)
}

func TestLedger_StatsCountsConfirmedGuestsOnly(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	two := aliceFields()
	three := aliceFields()
	three.Guests = 3
	three.Date = "today"
	for _, f := range []Fields{two, three} {
		_, err := ledger.Create(ctx, f)
		require.NoError(t, err)
	}

	s := ledger.Stats(ctx)
	assert.Equal(t, 5, s.TotalGuests)
	assert.Equal(t, 1, s.TodayCount)

	_, err := ledger.Cancel(ctx, "BK0001")
	require.NoError(t, err)

	s = ledger.Stats(ctx)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.ConfirmedCount)
	assert.Equal(t, 1, s.CancelledCount)
	assert.Equal(t, 3, s.TotalGuests)
	assert.InDelta(t, 50.0, s.SuccessRate, 0.0001)
}
