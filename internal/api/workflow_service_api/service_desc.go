package workflow_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "flightline.workflow.v1.WorkflowService"

// WorkflowServiceServer is the server API for WorkflowService.
type WorkflowServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAircraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InitiateBFS(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBFS(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FSIInitialAuth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AssignPersonnel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignTradesman(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignSupervisor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignFSI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAcceptance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAcceptance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignPilotAcceptance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectAcceptance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePostFlight(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPostFlight(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignPilotPostFlight(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignEngineerPostFlight(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(WorkflowServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, m structMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(WorkflowServiceServer)
			if interceptor == nil {
				return m(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return m(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

var WorkflowService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkflowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Login", WorkflowServiceServer.Login),
		unaryMethod("GetAircraft", WorkflowServiceServer.GetAircraft),
		unaryMethod("InitiateBFS", WorkflowServiceServer.InitiateBFS),
		unaryMethod("GetBFS", WorkflowServiceServer.GetBFS),
		unaryMethod("FSIInitialAuth", WorkflowServiceServer.FSIInitialAuth),
		unaryMethod("AssignPersonnel", WorkflowServiceServer.AssignPersonnel),
		unaryMethod("SignTradesman", WorkflowServiceServer.SignTradesman),
		unaryMethod("SignSupervisor", WorkflowServiceServer.SignSupervisor),
		unaryMethod("SignFSI", WorkflowServiceServer.SignFSI),
		unaryMethod("CreateAcceptance", WorkflowServiceServer.CreateAcceptance),
		unaryMethod("GetAcceptance", WorkflowServiceServer.GetAcceptance),
		unaryMethod("SignPilotAcceptance", WorkflowServiceServer.SignPilotAcceptance),
		unaryMethod("RejectAcceptance", WorkflowServiceServer.RejectAcceptance),
		unaryMethod("CreatePostFlight", WorkflowServiceServer.CreatePostFlight),
		unaryMethod("GetPostFlight", WorkflowServiceServer.GetPostFlight),
		unaryMethod("SignPilotPostFlight", WorkflowServiceServer.SignPilotPostFlight),
		unaryMethod("SignEngineerPostFlight", WorkflowServiceServer.SignEngineerPostFlight),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightline/workflow/v1/workflow.proto",
}

func RegisterWorkflowServiceServer(s grpc.ServiceRegistrar, srv WorkflowServiceServer) {
	s.RegisterService(&WorkflowService_ServiceDesc, srv)
}
