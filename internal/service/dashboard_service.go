package service

import (
	"context"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/query"
	"github.com/spec-kit/storefront/internal/repository"
)

// RecentOrderCount is how many orders the dashboard shows.
const RecentOrderCount = 5

// DashboardStats summarizes the store for the admin landing page.
type DashboardStats struct {
	Orders        int            `json:"orders"`
	PendingOrders int            `json:"pendingOrders"`
	Users         int            `json:"users"`
	Tickets       int            `json:"tickets"`
	OpenTickets   int            `json:"openTickets"`
	RecentOrders  []domain.Order `json:"recentOrders"`
	FromCache     bool           `json:"fromCache"`
}

// DashboardService computes admin overview numbers.
type DashboardService struct {
	orders  repository.OrderRepository
	users   repository.UserRepository
	tickets repository.TicketRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(orders repository.OrderRepository, users repository.UserRepository, tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{orders: orders, users: users, tickets: tickets}
}

// Stats loads the three collections and the recent orders.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, ordersCached, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	users, usersCached, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	tickets, ticketsCached, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	recent := query.SortByCreatedAt(orders, query.OrderCreatedAt, query.Desc)
	if len(recent) > RecentOrderCount {
		recent = recent[:RecentOrderCount]
	}
	return &DashboardStats{
		Orders:        len(orders),
		PendingOrders: len(query.FilterOrders(orders, domain.OrderStatusPending)),
		Users:         len(users),
		Tickets:       len(tickets),
		OpenTickets:   len(query.FilterTickets(tickets, domain.TicketStatusOpen)),
		RecentOrders:  recent,
		FromCache:     ordersCached || usersCached || ticketsCached,
	}, nil
}
