package grpc_control

import (
	"context"
	"encoding/json"
	"fmt"

	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "feedmonitor.v1.RateMonitor"

// RateMonitorServer is the control plane contract
type RateMonitorServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetLiveSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ControlService answers control-plane queries from the report store and the monitor
type ControlService struct {
	Reports   interfaces.IReportStore
	Snapshots interfaces.ISnapshotProvider
	Status    interfaces.IStatusProvider
	Logger    *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(reports interfaces.IReportStore, snapshots interfaces.ISnapshotProvider, st interfaces.IStatusProvider, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.NewLogger("INFO", "ControlService")
	}
	return &ControlService{
		Reports:   reports,
		Snapshots: snapshots,
		Status:    st,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// GetSnapshot returns the last published report
func (s *ControlService) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	report, ok := s.Reports.Latest()
	if !ok {
		return nil, status.Error(codes.Unavailable, "no report published yet")
	}
	return toStruct(report)
}

// -----------------------------------------------------------------------------

// GetLiveSnapshot computes the rates now instead of waiting for the next report
func (s *ControlService) GetLiveSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.Snapshots == nil {
		return nil, status.Error(codes.Unavailable, "monitor not running")
	}
	return toStruct(s.Snapshots.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.Status == nil {
		return nil, status.Error(codes.Unavailable, "monitor not running")
	}
	return toStruct(s.Status.Status())
}

// -----------------------------------------------------------------------------

// toStruct goes through JSON so field names match the REST API
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "unmarshal: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "struct: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Service descriptor
// -----------------------------------------------------------------------------

func RegisterRateMonitorServer(s grpc.ServiceRegistrar, srv RateMonitorServer) {
	s.RegisterService(&RateMonitorServiceDesc, srv)
}

func unaryHandler(method string, call func(RateMonitorServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RateMonitorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fmt.Sprintf("/%s/%s", ServiceName, method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(RateMonitorServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RateMonitorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RateMonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: unaryHandler("GetSnapshot", RateMonitorServer.GetSnapshot)},
		{MethodName: "GetLiveSnapshot", Handler: unaryHandler("GetLiveSnapshot", RateMonitorServer.GetLiveSnapshot)},
		{MethodName: "GetStatus", Handler: unaryHandler("GetStatus", RateMonitorServer.GetStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feedmonitor/v1/rate_monitor.proto",
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type RateMonitorClient struct {
	cc grpc.ClientConnInterface
}

func NewRateMonitorClient(cc grpc.ClientConnInterface) *RateMonitorClient {
	return &RateMonitorClient{cc: cc}
}

func (c *RateMonitorClient) invoke(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fmt.Sprintf("/%s/%s", ServiceName, method), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RateMonitorClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetSnapshot", opts...)
}

func (c *RateMonitorClient) GetLiveSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetLiveSnapshot", opts...)
}

func (c *RateMonitorClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetStatus", opts...)
}
