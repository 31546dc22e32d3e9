package application

import (
	"context"
	"testing"

	"encheres/internal/auction/domain"

	"github.com/stretchr/testify/require"
)

func TestWithdrawalServiceMarkPickedUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_the_record_lazily", func(t *testing.T) {
		f := newFixture(t)

		w, err := f.withdrawals.Get(ctx, 7)
		require.NoError(t, err)
		require.Nil(t, w)

		addr := domain.PickupAddress{Street: "3 rue des Halles", Zip: "44000", City: "Nantes"}
		w, err = f.withdrawals.MarkPickedUp(ctx, 7, addr)
		require.NoError(t, err)
		require.True(t, w.PickedUp)
		require.Equal(t, addr, w.Address)
	})

	t.Run("is_idempotent", func(t *testing.T) {
		f := newFixture(t)
		addr := domain.PickupAddress{City: "Nantes"}

		first, err := f.withdrawals.MarkPickedUp(ctx, 7, addr)
		require.NoError(t, err)
		second, err := f.withdrawals.MarkPickedUp(ctx, 7, domain.PickupAddress{City: "Rennes"})
		require.NoError(t, err)

		require.True(t, first.PickedUp)
		require.True(t, second.PickedUp)
		// the existing record is updated, not replaced: the original address
		// sticks
		require.Equal(t, "Nantes", second.Address.City)

		saved, err := f.withdrawals.Get(ctx, 7)
		require.NoError(t, err)
		require.True(t, saved.PickedUp)
		require.Equal(t, "Nantes", saved.Address.City)
	})
}

func TestWithdrawalServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// deleting a record that never existed is fine
	require.NoError(t, f.withdrawals.Delete(ctx, 99))

	_, err := f.withdrawals.MarkPickedUp(ctx, 5, domain.PickupAddress{})
	require.NoError(t, err)
	require.NoError(t, f.withdrawals.Delete(ctx, 5))

	w, err := f.withdrawals.Get(ctx, 5)
	require.NoError(t, err)
	require.Nil(t, w)
}

func TestWithdrawalServicePickupPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	closed := validArticle()
	closed.StartDate = today.AddDate(0, 0, -10)
	closed.EndDate = today.AddDate(0, 0, -3)
	require.NoError(t, f.store.Articles().Insert(ctx, closed))
	winner := &domain.Bid{ArticleID: closed.ID, BidderID: 3, Amount: 200}

	// closed with a winner and no record yet: the winner must be prompted
	pending, err := f.withdrawals.PickupPending(ctx, closed, winner)
	require.NoError(t, err)
	require.True(t, pending)

	// once picked up, nothing is pending anymore
	_, err = f.withdrawals.MarkPickedUp(ctx, closed.ID, domain.PickupAddress{})
	require.NoError(t, err)
	pending, err = f.withdrawals.PickupPending(ctx, closed, winner)
	require.NoError(t, err)
	require.False(t, pending)

	// an open auction is never pending
	open := validArticle()
	require.NoError(t, f.store.Articles().Insert(ctx, open))
	pending, err = f.withdrawals.PickupPending(ctx, open, nil)
	require.NoError(t, err)
	require.False(t, pending)
}
