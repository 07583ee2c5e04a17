package errutil

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// GRPCCode converts the CoreStatus to its closest gRPC status code equivalent.
func (s CoreStatus) GRPCCode() codes.Code {
	switch s {
	case StatusUnauthorized:
		return codes.Unauthenticated
	case StatusForbidden:
		return codes.PermissionDenied
	case StatusNotFound:
		return codes.NotFound
	case StatusTimeout, StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case StatusUnprocessableEntity:
		return codes.FailedPrecondition
	case StatusUnsupportedMediaType, StatusBadRequest, StatusValidationFailed:
		return codes.InvalidArgument
	case StatusConflict:
		return codes.AlreadyExists
	case StatusTooManyRequests:
		return codes.ResourceExhausted
	case StatusClientClosedRequest:
		return codes.Canceled
	case StatusNotImplemented:
		return codes.Unimplemented
	case StatusBadGateway, StatusServiceUnavailable:
		return codes.Unavailable
	case StatusInternal:
		return codes.Internal
	case StatusUnknown:
		return codes.Unknown
	default:
		return codes.Unknown
	}
}

// statusFromGRPCCode is the inverse of GRPCCode, used by clients of sibling services.
func statusFromGRPCCode(c codes.Code) CoreStatus {
	switch c {
	case codes.Unauthenticated:
		return StatusUnauthorized
	case codes.PermissionDenied:
		return StatusForbidden
	case codes.NotFound:
		return StatusNotFound
	case codes.DeadlineExceeded:
		return StatusGatewayTimeout
	case codes.FailedPrecondition:
		return StatusUnprocessableEntity
	case codes.InvalidArgument, codes.OutOfRange:
		return StatusBadRequest
	case codes.AlreadyExists, codes.Aborted:
		return StatusConflict
	case codes.ResourceExhausted:
		return StatusTooManyRequests
	case codes.Canceled:
		return StatusClientClosedRequest
	case codes.Unimplemented:
		return StatusNotImplemented
	case codes.Unavailable:
		return StatusServiceUnavailable
	case codes.Internal, codes.DataLoss:
		return StatusInternal
	default:
		return StatusUnknown
	}
}

// Domain tags the ErrorInfo detail attached to every translated status.
const Domain = "eventreward"

// ToGRPCError normalises a domain error into a gRPC status error so handlers can
// safely return it to the transport layer. The CoreStatus and field details
// travel as errdetails so FromGRPCError can restore them exactly.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	var base BaseError
	if errors.As(err, &base) {
		return withDetails(status.New(base.Code.GRPCCode(), base.Message), base)
	}

	var coder interface{ Status() CoreStatus }
	if errors.As(err, &coder) {
		return status.Error(coder.Status().GRPCCode(), err.Error())
	}

	return status.Error(codes.Internal, "internal error")
}

func withDetails(st *status.Status, base BaseError) error {
	details := []protoadapt.MessageV1{
		&errdetails.ErrorInfo{Reason: string(base.Code), Domain: Domain},
	}
	if len(base.Details) > 0 {
		br := &errdetails.BadRequest{}
		for _, d := range base.Details {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       d.Field,
				Description: d.Message,
			})
		}
		details = append(details, br)
	}

	withDetails, err := st.WithDetails(details...)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// FromGRPCError converts an error returned by a gRPC client call back into a BaseError.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}

	var base BaseError
	if errors.As(err, &base) {
		return base
	}

	st, ok := status.FromError(err)
	if !ok {
		return New(StatusInternal, err.Error())
	}

	base = BaseError{Code: statusFromGRPCCode(st.Code()), Message: st.Message()}
	for _, d := range st.Details() {
		switch detail := d.(type) {
		case *errdetails.ErrorInfo:
			if detail.GetDomain() == Domain {
				base.Code = CoreStatus(detail.GetReason())
			}
		case *errdetails.BadRequest:
			for _, v := range detail.GetFieldViolations() {
				base.Details = append(base.Details, Detail{Field: v.GetField(), Message: v.GetDescription()})
			}
		}
	}
	return base
}
