package domain_test

import (
	"testing"
	"time"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_Expired(t *testing.T) {
	item := domain.CartItem{ID: "ci-1", CreatedAt: now}

	assert.False(t, item.Expired(now.Add(59*time.Minute)))
	assert.True(t, item.Expired(now.Add(61*time.Minute)))
}

func TestPruneExpired(t *testing.T) {
	items := []domain.CartItem{
		{ID: "fresh", CreatedAt: now},
		{ID: "stale", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "border", CreatedAt: now.Add(-59 * time.Minute)},
	}

	live, expired := domain.PruneExpired(items, now)

	require.Len(t, live, 2)
	require.Len(t, expired, 1)
	assert.Equal(t, "stale", expired[0].ID)
	assert.Equal(t, []string{"fresh", "border"}, []string{live[0].ID, live[1].ID})
}

func TestCartTotal(t *testing.T) {
	lines := []domain.CartLine{
		{Item: domain.CartItem{ID: "a"}, Price: 12000},
		{Item: domain.CartItem{ID: "b"}, Price: 40000},
	}
	assert.Equal(t, int64(52000), domain.CartTotal(lines))
	assert.Zero(t, domain.CartTotal(nil))
}

func TestWallet(t *testing.T) {
	t.Run("new wallet starts empty", func(t *testing.T) {
		w, err := domain.NewWallet("pas-1")

		require.NoError(t, err)
		assert.Zero(t, w.Balance)

		_, err = domain.NewWallet("")
		assert.Error(t, err)
	})

	t.Run("can debit up to the balance", func(t *testing.T) {
		w := domain.Wallet{PassengerID: "pas-1", Balance: 100}

		assert.True(t, w.CanDebit(100))
		assert.False(t, w.CanDebit(101))
		assert.False(t, w.CanDebit(-1))
	})

	t.Run("debit within balance", func(t *testing.T) {
		w := domain.Wallet{PassengerID: "pas-1", Balance: 50000}

		require.NoError(t, w.Debit(40000))
		assert.Equal(t, int64(10000), w.Balance)
	})

	t.Run("debit past balance is rejected", func(t *testing.T) {
		w := domain.Wallet{PassengerID: "pas-1", Balance: 100}

		err := w.Debit(101)

		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInsufficientBalance))
		assert.Equal(t, int64(100), w.Balance)
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		w := domain.Wallet{PassengerID: "pas-1", Balance: 100}

		assert.Error(t, w.Debit(0))
		assert.Error(t, w.Credit(-5))
	})

	t.Run("credit has no upper bound", func(t *testing.T) {
		w := domain.Wallet{PassengerID: "pas-1"}

		require.NoError(t, w.Credit(1_000_000_000))
		assert.Equal(t, int64(1_000_000_000), w.Balance)
	})
}
