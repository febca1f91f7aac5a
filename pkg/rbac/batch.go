package rbac

import (
	"errors"

	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/userlink"
)

// BatchResult partitions a batch by outcome. Both lists follow input order.
type BatchResult struct {
	Successes []userlink.User `json:"successes"`
	Failures  []BatchFailure  `json:"failures"`
}

// BatchFailure explains why one input id was not associated
type BatchFailure struct {
	ID      string               `json:"id"`
	Reason  rbacerrors.Kind      `json:"reason"`
	Code    rbacerrors.ErrorCode `json:"code"`
	Message string               `json:"message"`
}

type batchItem struct {
	user userlink.User
	err  error
}

func newBatchFailure(id string, err error) BatchFailure {
	message := err.Error()
	var e *rbacerrors.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	return BatchFailure{
		ID:      id,
		Reason:  rbacerrors.KindOf(err),
		Code:    rbacerrors.GetCode(err),
		Message: message,
	}
}
