// Package query holds pure filter, search and sort functions over already
// fetched snapshots. None of them mutate their input, and an empty filter
// value returns a copy of the input.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Where returns the elements of items matching keep.
func Where[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func clone[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}

// FilterOrders keeps orders with the given status.
func FilterOrders(orders []domain.Order, status domain.OrderStatus) []domain.Order {
	if status == "" {
		return clone(orders)
	}
	return Where(orders, func(o domain.Order) bool { return o.Status == status })
}

// SearchOrders matches customer name, business name or system name.
func SearchOrders(orders []domain.Order, term string) []domain.Order {
	term = normalizeTerm(term)
	if term == "" {
		return clone(orders)
	}
	return Where(orders, func(o domain.Order) bool {
		return matches(term, o.CustomerName, o.BusinessName, o.SystemName)
	})
}

// OrdersForUser keeps the orders placed by uid.
func OrdersForUser(orders []domain.Order, uid string) []domain.Order {
	return Where(orders, func(o domain.Order) bool { return o.UserID != nil && *o.UserID == uid })
}

// FilterUsers keeps users with the given role; a missing role counts as user.
func FilterUsers(users []domain.User, role string) []domain.User {
	if role == "" {
		return clone(users)
	}
	return Where(users, func(u domain.User) bool { return u.EffectiveRole() == role })
}

// SearchUsers matches display name, email or business name.
func SearchUsers(users []domain.User, term string) []domain.User {
	term = normalizeTerm(term)
	if term == "" {
		return clone(users)
	}
	return Where(users, func(u domain.User) bool {
		return matches(term, u.DisplayName, u.Email, u.BusinessName)
	})
}

// FilterTickets keeps tickets with the given status.
func FilterTickets(tickets []domain.SupportTicket, status domain.TicketStatus) []domain.SupportTicket {
	if status == "" {
		return clone(tickets)
	}
	return Where(tickets, func(t domain.SupportTicket) bool { return t.Status == status })
}

// TicketsForUser keeps tickets opened by uid.
func TicketsForUser(tickets []domain.SupportTicket, uid string) []domain.SupportTicket {
	return Where(tickets, func(t domain.SupportTicket) bool { return t.UserID != nil && *t.UserID == uid })
}

// WithRecentUserReplies keeps tickets whose last reply is a user reply newer
// than window.
func WithRecentUserReplies(tickets []domain.SupportTicket, now time.Time, window time.Duration) []domain.SupportTicket {
	return Where(tickets, func(t domain.SupportTicket) bool {
		last, ok := t.LastReply()
		if !ok || !last.IsUserReply || last.CreatedAt.IsZero() {
			return false
		}
		return now.Sub(last.CreatedAt) < window
	})
}

// FilterFAQs keeps FAQs in the given category.
func FilterFAQs(faqs []domain.FAQ, category domain.FAQCategory) []domain.FAQ {
	if category == "" {
		return clone(faqs)
	}
	return Where(faqs, func(f domain.FAQ) bool { return f.Category == category })
}

// SearchFAQs matches question or answer.
func SearchFAQs(faqs []domain.FAQ, term string) []domain.FAQ {
	term = normalizeTerm(term)
	if term == "" {
		return clone(faqs)
	}
	return Where(faqs, func(f domain.FAQ) bool { return matches(term, f.Question, f.Answer) })
}

// ActiveFAQs keeps published FAQs.
func ActiveFAQs(faqs []domain.FAQ) []domain.FAQ {
	return Where(faqs, func(f domain.FAQ) bool { return f.IsActive })
}

// Product filter values beyond the categories.
const (
	ProductFilterActive   = "active"
	ProductFilterInactive = "inactive"
)

// FilterProducts keeps products by category, or by state when value is
// ProductFilterActive or ProductFilterInactive.
func FilterProducts(products []domain.Product, value string) []domain.Product {
	switch value {
	case "":
		return clone(products)
	case ProductFilterActive:
		return ActiveProducts(products)
	case ProductFilterInactive:
		return Where(products, func(p domain.Product) bool { return !p.IsActive })
	default:
		return Where(products, func(p domain.Product) bool { return string(p.Category) == value })
	}
}

// SearchProducts matches name, description or any feature.
func SearchProducts(products []domain.Product, term string) []domain.Product {
	term = normalizeTerm(term)
	if term == "" {
		return clone(products)
	}
	return Where(products, func(p domain.Product) bool {
		return matches(term, p.Name, p.Description) || matches(term, p.Features...)
	})
}

// ActiveProducts keeps products shown in the public catalog.
func ActiveProducts(products []domain.Product) []domain.Product {
	return Where(products, func(p domain.Product) bool { return p.IsActive })
}

// SortByCreatedAt returns a copy sorted by creation time.
func SortByCreatedAt[T any](items []T, createdAt func(T) time.Time, dir Direction) []T {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := createdAt(out[i]), createdAt(out[j])
		if dir == Desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out
}

// SortByOrder returns a copy sorted by the display order field.
func SortByOrder[T any](items []T, order func(T) int, dir Direction) []T {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Desc {
			return order(out[i]) > order(out[j])
		}
		return order(out[i]) < order(out[j])
	})
	return out
}

// Accessors for the sort helpers.
func OrderCreatedAt(o domain.Order) time.Time          { return o.CreatedAt }
func TicketCreatedAt(t domain.SupportTicket) time.Time { return t.CreatedAt }
func ProductCreatedAt(p domain.Product) time.Time      { return p.CreatedAt }
func UserCreatedAt(u domain.User) time.Time            { return u.CreatedAt }
func FAQOrder(f domain.FAQ) int                        { return f.Order }
func ProductOrder(p domain.Product) int                { return p.Order }
