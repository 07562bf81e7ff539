// Package grpcerr maps workflow errors onto gRPC codes and, through the
// grpc-gateway table, onto HTTP statuses.
package grpcerr

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const reasonInternal = "INTERNAL"

func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			return codes.InvalidArgument
		case domain.KindPrecondition:
			return codes.FailedPrecondition
		case domain.KindAuthorization:
			return codes.PermissionDenied
		case domain.KindNotFound:
			return codes.NotFound
		case domain.KindUnauthenticated:
			return codes.Unauthenticated
		case domain.KindConflict:
			return codes.Aborted
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Internal
}

// Reason is the stable workflow error code of err, or INTERNAL.
func Reason(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return reasonInternal
}

// Message is safe to return to a client: infrastructure detail is hidden.
func Message(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	switch Code(err) {
	case codes.Canceled:
		return "request canceled"
	case codes.DeadlineExceeded:
		return "deadline exceeded"
	}
	return "internal error"
}

// Internal reports whether err is an unexpected failure worth logging.
func Internal(err error) bool {
	return err != nil && Code(err) == codes.Internal
}

// Status renders err as a gRPC status whose message is "REASON: message".
func Status(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	return status.New(Code(err), Reason(err)+": "+Message(err))
}

func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(Code(err))
}
