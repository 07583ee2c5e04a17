// Package eventv1 is the contract of the event service: events, rewards and
// reward requests.
package eventv1

import (
	"context"

	"eventreward/pkg/errutil"
	"eventreward/pkg/rpc"

	"google.golang.org/grpc"
)

const ServiceName = "eventreward.event.v1.EventService"

type EventServiceServer interface {
	CreateEvent(context.Context, *CreateEventRequest) (*Event, error)
	GetEvent(context.Context, *GetEventRequest) (*Event, error)
	ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error)
	CreateReward(context.Context, *CreateRewardRequest) (*Reward, error)
	ListRewards(context.Context, *ListRewardsRequest) (*ListRewardsResponse, error)
	SubmitRewardRequest(context.Context, *SubmitRewardRequestRequest) (*SubmitRewardRequestResponse, error)
	ListMyRewardRequests(context.Context, *ListMyRewardRequestsRequest) (*ListRewardRequestsResponse, error)
	ListAllRewardRequests(context.Context, *ListAllRewardRequestsRequest) (*ListRewardRequestsResponse, error)
}

func server(srv any) EventServiceServer { return srv.(EventServiceServer) }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EventServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateEvent", func(srv any, ctx context.Context, req *CreateEventRequest) (*Event, error) {
			return server(srv).CreateEvent(ctx, req)
		}),
		rpc.Unary(ServiceName, "GetEvent", func(srv any, ctx context.Context, req *GetEventRequest) (*Event, error) {
			return server(srv).GetEvent(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListEvents", func(srv any, ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
			return server(srv).ListEvents(ctx, req)
		}),
		rpc.Unary(ServiceName, "CreateReward", func(srv any, ctx context.Context, req *CreateRewardRequest) (*Reward, error) {
			return server(srv).CreateReward(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListRewards", func(srv any, ctx context.Context, req *ListRewardsRequest) (*ListRewardsResponse, error) {
			return server(srv).ListRewards(ctx, req)
		}),
		rpc.Unary(ServiceName, "SubmitRewardRequest", func(srv any, ctx context.Context, req *SubmitRewardRequestRequest) (*SubmitRewardRequestResponse, error) {
			return server(srv).SubmitRewardRequest(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListMyRewardRequests", func(srv any, ctx context.Context, req *ListMyRewardRequestsRequest) (*ListRewardRequestsResponse, error) {
			return server(srv).ListMyRewardRequests(ctx, req)
		}),
		rpc.Unary(ServiceName, "ListAllRewardRequests", func(srv any, ctx context.Context, req *ListAllRewardRequestsRequest) (*ListRewardRequestsResponse, error) {
			return server(srv).ListAllRewardRequests(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventreward/event/v1",
}

func RegisterEventServiceServer(s grpc.ServiceRegistrar, srv EventServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// EventServiceClient returns errutil.BaseError values rebuilt from the gRPC status.
type EventServiceClient interface {
	EventServiceServer
}

type eventServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEventServiceClient(cc grpc.ClientConnInterface) EventServiceClient {
	return &eventServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any) (*Resp, error) {
	out, err := rpc.Invoke[Resp](ctx, cc, ServiceName, method, req)
	if err != nil {
		return nil, errutil.FromGRPCError(err)
	}
	return out, nil
}

func (c *eventServiceClient) CreateEvent(ctx context.Context, req *CreateEventRequest) (*Event, error) {
	return invoke[Event](ctx, c.cc, "CreateEvent", req)
}

func (c *eventServiceClient) GetEvent(ctx context.Context, req *GetEventRequest) (*Event, error) {
	return invoke[Event](ctx, c.cc, "GetEvent", req)
}

func (c *eventServiceClient) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
	return invoke[ListEventsResponse](ctx, c.cc, "ListEvents", req)
}

func (c *eventServiceClient) CreateReward(ctx context.Context, req *CreateRewardRequest) (*Reward, error) {
	return invoke[Reward](ctx, c.cc, "CreateReward", req)
}

func (c *eventServiceClient) ListRewards(ctx context.Context, req *ListRewardsRequest) (*ListRewardsResponse, error) {
	return invoke[ListRewardsResponse](ctx, c.cc, "ListRewards", req)
}

func (c *eventServiceClient) SubmitRewardRequest(ctx context.Context, req *SubmitRewardRequestRequest) (*SubmitRewardRequestResponse, error) {
	return invoke[SubmitRewardRequestResponse](ctx, c.cc, "SubmitRewardRequest", req)
}

func (c *eventServiceClient) ListMyRewardRequests(ctx context.Context, req *ListMyRewardRequestsRequest) (*ListRewardRequestsResponse, error) {
	return invoke[ListRewardRequestsResponse](ctx, c.cc, "ListMyRewardRequests", req)
}

func (c *eventServiceClient) ListAllRewardRequests(ctx context.Context, req *ListAllRewardRequestsRequest) (*ListRewardRequestsResponse, error) {
	return invoke[ListRewardRequestsResponse](ctx, c.cc, "ListAllRewardRequests", req)
}
