package api

import (
	"context"
	"encoding/json"
	"fmt"

	"shareit/internal/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	grpcServiceName = "shareit.v1.ShareIt"
	userIDMetadata  = "x-sharer-user-id"
)

// ShareItServer is the read-only gRPC surface. Responses are JSON-shaped
// structs carrying the same fields as the HTTP DTOs.
type ShareItServer interface {
	GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	SearchItems(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	GetBooking(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListBookings(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

var ShareItServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*ShareItServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: unaryMethod("GetItem", newInt64, ShareItServer.GetItem)},
		{MethodName: "SearchItems", Handler: unaryMethod("SearchItems", newString, ShareItServer.SearchItems)},
		{MethodName: "GetBooking", Handler: unaryMethod("GetBooking", newInt64, ShareItServer.GetBooking)},
		{MethodName: "ListBookings", Handler: unaryMethod("ListBookings", newString, ShareItServer.ListBookings)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shareit/v1/shareit.proto",
}

func RegisterShareItServer(s grpc.ServiceRegistrar, srv ShareItServer) {
	s.RegisterService(&ShareItServiceDesc, srv)
}

func newInt64() *wrapperspb.Int64Value   { return new(wrapperspb.Int64Value) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func unaryMethod[T any](
	name string,
	newReq func() T,
	call func(ShareItServer, context.Context, T) (*structpb.Struct, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := fmt.Sprintf("/%s/%s", grpcServiceName, name)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ShareItServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ShareItServer), ctx, req.(T))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ShareItService serves ShareItServer from the domain services.
type ShareItService struct {
	svc Services
}

func NewShareItService(svc Services) *ShareItService {
	return &ShareItService{svc: svc}
}

func grpcCaller(ctx context.Context) (int64, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	return parseUserID(first(md.Get(userIDMetadata)))
}

func (s *ShareItService) GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := grpcCaller(ctx); err != nil {
		return nil, toStatus(err)
	}
	detail, err := s.svc.Items.GetDetail(ctx, req.GetValue(), true)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(toItemDetailDTO(detail))
}

func (s *ShareItService) SearchItems(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	caller, err := grpcCaller(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	items, err := s.svc.Items.Search(ctx, caller, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"items": toItemsWithComments(items)})
}

func (s *ShareItService) GetBooking(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	caller, err := grpcCaller(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	booking, err := s.svc.Bookings.GetForUser(ctx, req.GetValue(), caller)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(toBookingDTO(booking))
}

func (s *ShareItService) ListBookings(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	caller, err := grpcCaller(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	filter, err := parseState(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	bookings, err := s.svc.Bookings.ListForUser(ctx, caller, models.RoleBooker, filter)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"bookings": toBookingDTOs(bookings)})
}

// toStruct converts a DTO into a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, toStatus(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
