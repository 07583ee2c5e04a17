package eventserver

import (
	"eventreward/pkg/api/eventv1"

	"go.uber.org/fx"
	"google.golang.org/grpc"
)

var Module = fx.Module("event.server",
	fx.Provide(NewServer),
	fx.Invoke(func(s *grpc.Server, srv *Server) {
		eventv1.RegisterEventServiceServer(s, srv)
	}),
)
