package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for rbac_user_associations_total
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Op labels for rbac_role_permission_changes_total
const (
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Metrics holds the RBAC counters. Create it with New; the zero value is not usable.
type Metrics struct {
	userAssociations  *prometheus.CounterVec
	permissionChanges *prometheus.CounterVec
}

// New creates the RBAC counters and registers them on reg (or the default registerer if nil).
// Counters already registered on reg are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	userAssociations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_user_associations_total",
		Help: "User to role association attempts by outcome",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	permissionChanges, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_role_permission_changes_total",
		Help: "Role permission set changes by operation",
	}, []string{"op"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		userAssociations:  userAssociations,
		permissionChanges: permissionChanges,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// UserAssociation counts one association attempt
func (m *Metrics) UserAssociation(outcome string) {
	m.userAssociations.WithLabelValues(outcome).Inc()
}

// PermissionChange counts one change to a role's permission set
func (m *Metrics) PermissionChange(op string) {
	m.permissionChanges.WithLabelValues(op).Inc()
}
