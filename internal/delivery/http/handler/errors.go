package handler

import (
	stderrors "errors"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/pkg/errors"
	"github.com/matchroute-service/internal/pkg/validator"
)

// invalidRequest wraps validation failures with per-field details.
func invalidRequest(err error) error {
	return errors.ErrInvalidRequest.WithDetails(validator.Details(err))
}

// occupancyError maps a failed live-data fetch onto the API taxonomy.
func occupancyError(err error) error {
	var occErr *domain.OccupancyError
	if !stderrors.As(err, &occErr) {
		return err
	}

	details := map[string]interface{}{"kind": string(occErr.Kind)}
	if occErr.Kind == domain.OccupancyErrSchema {
		return errors.ErrUpstreamRejected.WithDetails(details)
	}
	return errors.ErrUpstreamUnavailable.WithDetails(details)
}
