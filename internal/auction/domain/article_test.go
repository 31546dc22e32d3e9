package domain_test

import (
	"testing"
	"time"

	"encheres/internal/auction/domain"

	"github.com/stretchr/testify/require"
)

func TestStateAt(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		today    time.Time
		expected domain.ArticleState
	}{
		{"day_before_start", start.AddDate(0, 0, -1), domain.StateUpcoming},
		{"start_day", start, domain.StateActive},
		{"mid_window", start.AddDate(0, 0, 5), domain.StateActive},
		{"end_day", end, domain.StateActive},
		{"day_after_end", end.AddDate(0, 0, 1), domain.StateClosed},
		// the hour of day never matters
		{"late_on_end_day", end.Add(23 * time.Hour), domain.StateActive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, domain.StateAt(tc.today, start, end))
		})
	}
}

func TestPickupPending(t *testing.T) {
	record := func(pickedUp bool) *domain.Withdrawal {
		return &domain.Withdrawal{ArticleID: 1, PickedUp: pickedUp}
	}

	tests := []struct {
		name      string
		state     domain.ArticleState
		hasWinner bool
		w         *domain.Withdrawal
		expected  bool
	}{
		{"open_auction_never_pending", domain.StateActive, true, record(false), false},
		{"upcoming_never_pending", domain.StateUpcoming, false, nil, false},
		{"closed_with_unpicked_record", domain.StateClosed, true, record(false), true},
		{"closed_with_picked_record", domain.StateClosed, true, record(true), false},
		{"closed_no_record_with_winner", domain.StateClosed, true, nil, true},
		{"closed_no_record_no_winner", domain.StateClosed, false, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, domain.PickupPending(tc.state, tc.hasWinner, tc.w))
		})
	}
}
