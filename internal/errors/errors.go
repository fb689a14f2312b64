package gerr

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ShopNotFound        = status.Error(codes.NotFound, "shop not found")
	InvalidRange        = status.Error(codes.InvalidArgument, "invalid range: to is before from")
	UnknownFilter       = status.Error(codes.InvalidArgument, "unknown time filter")
	BadDate             = status.Error(codes.InvalidArgument, "malformed date")
	CustomRangeRequired = status.Error(codes.InvalidArgument, "custom time filter requires from and to")
	IncompleteRange     = status.Error(codes.InvalidArgument, "from and to must be set together")
	RangeTooLong        = status.Error(codes.InvalidArgument, "time range is too long")
	InvalidPercentage   = status.Error(codes.InvalidArgument, "profit share percentage must be between 0 and 100 with at most 2 decimal places")
	NegativeAmount      = status.Error(codes.InvalidArgument, "revenue, orders and total purchase must not be negative")
	SheetNotConfigured  = status.Error(codes.FailedPrecondition, "shop has no spreadsheet configured")
	SheetUnreadable     = status.Error(codes.FailedPrecondition, "spreadsheet cannot be read")
	UpstreamUnavailable = status.Error(codes.Unavailable, "metrics source unavailable")
	SyncDisabled        = status.Error(codes.Unavailable, "spreadsheet sync is disabled")
)

// IsValidation reports whether err carries an InvalidArgument status,
// either directly or wrapped.
func IsValidation(err error) bool {
	return status.Code(err) == codes.InvalidArgument
}

// IsNotFound reports whether err carries a NotFound status.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsUpstreamUnavailable reports whether err is or wraps UpstreamUnavailable.
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, UpstreamUnavailable) || status.Code(err) == codes.Unavailable
}
