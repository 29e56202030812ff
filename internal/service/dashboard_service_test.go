package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := seedProduct(t, f, "POS", 100, true)
	orders := newOrderService(f)

	var ids []string
	for i := 0; i < 7; i++ {
		o, err := orders.Submit(ctx, "", validOrder(product.ID))
		require.NoError(t, err)
		ids = append(ids, o.ID)
		f.clock.Advance(time.Minute)
	}
	_, err := orders.UpdateStatus(ctx, "boss", ids[0], domain.OrderStatusApproved)
	require.NoError(t, err)
	_, err = orders.UpdateStatus(ctx, "boss", ids[1], domain.OrderStatusRejected)
	require.NoError(t, err)

	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "u1"}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "u2"}))

	tickets := newTicketService(f)
	openTicket(t, tickets, "u1")
	closed := openTicket(t, tickets, "u2")
	_, err = tickets.UpdateStatus(ctx, "boss", closed.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	stats, err := NewDashboardService(f.orders, f.users, f.tickets).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Orders)
	assert.Equal(t, 5, stats.PendingOrders)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 2, stats.Tickets)
	assert.Equal(t, 1, stats.OpenTickets)
	assert.False(t, stats.FromCache)

	require.Len(t, stats.RecentOrders, RecentOrderCount)
	assert.Equal(t, ids[6], stats.RecentOrders[0].ID)
	assert.Equal(t, ids[2], stats.RecentOrders[4].ID)
}

func TestDashboardStatsEmptyStore(t *testing.T) {
	f := newFixture(t)
	stats, err := NewDashboardService(f.orders, f.users, f.tickets).Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Orders)
	assert.Empty(t, stats.RecentOrders)
}
