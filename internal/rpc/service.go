// Package rpc exposes missions over gRPC. Messages are google.protobuf.Struct
// values carrying the same JSON layout as the HTTP API, so the service needs
// no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "softkill.v1.MissionService"

const (
	methodRunMission    = "/" + ServiceName + "/RunMission"
	methodGetSimulation = "/" + ServiceName + "/GetSimulation"
)

// MissionServiceServer is the server API for MissionService.
type MissionServiceServer interface {
	// RunMission runs a configuration to completion and returns the
	// MissionRun map.
	RunMission(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetSimulation returns a stored job by {"id": ...}.
	GetSimulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes MissionService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunMission", Handler: unaryHandler(methodRunMission, MissionServiceServer.RunMission)},
		{MethodName: "GetSimulation", Handler: unaryHandler(methodGetSimulation, MissionServiceServer.GetSimulation)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "softkill/v1/mission.proto",
}

// RegisterMissionServiceServer registers srv on s.
func RegisterMissionServiceServer(s grpc.ServiceRegistrar, srv MissionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(MissionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MissionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MissionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
