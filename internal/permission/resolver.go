package permission

import (
	"context"

	"go.uber.org/zap"
)

// SubjectSource loads the permission-relevant view of a user. Not-found and
// failures are both reported as errors.
type SubjectSource interface {
	Subject(ctx context.Context, userID string) (*Subject, error)
}

// Affordance is a named admin menu entry.
type Affordance string

const (
	AffordanceProducts  Affordance = "products"
	AffordanceUsers     Affordance = "users"
	AffordanceSupport   Affordance = "support"
	AffordanceOrders    Affordance = "orders"
	AffordanceSettings  Affordance = "settings"
	AffordanceAnalytics Affordance = "analytics"
)

var affordances = map[Affordance]Capability{
	AffordanceProducts:  {SectionProducts, ActionView},
	AffordanceUsers:     {SectionUsers, ActionView},
	AffordanceSupport:   {SectionSupport, ActionView},
	AffordanceOrders:    {SectionOrders, ActionView},
	AffordanceSettings:  {SectionSettings, ActionView},
	AffordanceAnalytics: {SectionAnalytics, ActionView},
}

// Resolver answers permission checks against stored user records.
type Resolver struct {
	source SubjectSource
	logger *zap.Logger
}

// NewResolver builds a resolver over source.
func NewResolver(source SubjectSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Check denies whenever the user cannot be loaded.
func (r *Resolver) Check(ctx context.Context, sessionID string, section Section, action Action) bool {
	if sessionID == "" {
		return false
	}
	subject, err := r.source.Subject(ctx, sessionID)
	if err != nil {
		r.logger.Debug("permission subject unavailable",
			zap.String("user_id", sessionID), zap.Error(err))
		return false
	}
	return Resolve(subject, section, action)
}

// ApplyUI reports which menu affordances to show. It is cosmetic; the HTTP
// guard enforces access.
func (r *Resolver) ApplyUI(ctx context.Context, sessionID string) map[Affordance]bool {
	out := make(map[Affordance]bool, len(affordances))
	var subject *Subject
	if sessionID != "" {
		s, err := r.source.Subject(ctx, sessionID)
		if err == nil {
			subject = s
		}
	}
	for name, capability := range affordances {
		out[name] = Resolve(subject, capability.Section, capability.Action)
	}
	return out
}
