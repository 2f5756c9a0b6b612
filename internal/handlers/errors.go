package handlers

import (
	"context"
	"errors"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/asakaida/unicatalog/internal/retry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps catalog errors to gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var dup *entities.DuplicateAttributeError
	switch {
	case errors.Is(err, entities.ErrEntityNotFound), errors.Is(err, entities.ErrAttributeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, entities.ErrInvalidDataType),
		errors.Is(err, entities.ErrInvalidValue),
		errors.Is(err, entities.ErrAttributeNameRequired),
		errors.Is(err, entities.ErrEntityNameRequired),
		errors.Is(err, entities.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &dup):
		return status.Error(codes.Aborted, err.Error())
	case retry.IsRetryable(err):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
