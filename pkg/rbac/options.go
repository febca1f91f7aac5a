package rbac

import (
	"fmt"
	"log/slog"
	"strings"
)

// DeletePolicy decides what happens to users holding a role that is deleted
type DeletePolicy string

const (
	// DeletePolicyOrphan deletes the role and leaves holders with a stale role_id
	DeletePolicyOrphan DeletePolicy = "orphan"
	// DeletePolicyReject refuses to delete a role that any user holds
	DeletePolicyReject DeletePolicy = "reject"
	// DeletePolicyDetach clears role_id on every holder, then deletes the role
	DeletePolicyDetach DeletePolicy = "detach"
)

// ParseDeletePolicy parses a policy name. An empty string yields DeletePolicyOrphan.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DeletePolicyOrphan, nil
	case DeletePolicyOrphan, DeletePolicyReject, DeletePolicyDetach:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported role delete policy: %s (supported: orphan, reject, detach)", s)
	}
}

// Recorder receives per-operation counts. *metrics.Metrics satisfies it.
type Recorder interface {
	UserAssociation(outcome string)
	PermissionChange(op string)
}

type noopRecorder struct{}

func (noopRecorder) UserAssociation(string)  {}
func (noopRecorder) PermissionChange(string) {}

// Option configures a Service
type Option func(*Service)

// WithDeletePolicy sets the role delete policy
func WithDeletePolicy(p DeletePolicy) Option {
	return func(s *Service) {
		s.deletePolicy = p
	}
}

// WithBatchConcurrency caps the number of concurrent attempts in AssociateUsers. n <= 0 means unlimited.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		s.batchConcurrency = n
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
