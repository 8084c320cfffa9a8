package grpc

import (
	"maps"
	"slices"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/dmitrijs2005/noteauth/internal/server/requests"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. Only the classified
// message crosses the boundary.
func toStatus(err error) error {
	se := common.AsServiceError(err)
	switch se.Kind {
	case common.KindConflict:
		return status.Error(codes.AlreadyExists, se.Message)
	case common.KindUnauthorized:
		return status.Error(codes.Unauthenticated, se.Message)
	case common.KindNotFound:
		return status.Error(codes.NotFound, se.Message)
	case common.KindInvalidArgument:
		return status.Error(codes.InvalidArgument, se.Message)
	default:
		return status.Error(codes.Internal, se.Message)
	}
}

func invalidArgument(err error) error {
	fields := requests.FieldErrors(err)
	for _, f := range slices.Sorted(maps.Keys(fields)) {
		if msgs := fields[f]; len(msgs) > 0 {
			return status.Error(codes.InvalidArgument, "Validation error: "+f+": "+msgs[0])
		}
	}
	return status.Error(codes.InvalidArgument, "Validation error")
}
