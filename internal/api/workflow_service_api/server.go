package workflow_service_api

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/acceptance"
	"github.com/Domenick1991/flightline/internal/service/aircraft"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/Domenick1991/flightline/internal/service/bfs"
	"github.com/Domenick1991/flightline/internal/service/postflight"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ WorkflowServiceServer = (*Server)(nil)

// Server implements WorkflowService. Requests and responses are
// google.protobuf.Struct values shaped like the REST JSON bodies; record ids
// travel in the "id" field.
type Server struct {
	auth        auth.AuthUseCase
	aircraft    aircraft.AircraftUseCase
	bfs         bfs.BFSUseCase
	acceptances acceptance.AcceptanceUseCase
	postflights postflight.PostFlightUseCase
}

func NewServer(
	authSvc auth.AuthUseCase,
	aircraftSvc aircraft.AircraftUseCase,
	bfsSvc bfs.BFSUseCase,
	acceptanceSvc acceptance.AcceptanceUseCase,
	postflightSvc postflight.PostFlightUseCase,
) *Server {
	return &Server{
		auth:        authSvc,
		aircraft:    aircraftSvc,
		bfs:         bfsSvc,
		acceptances: acceptanceSvc,
		postflights: postflightSvc,
	}
}

type idRequest struct {
	ID int64 `json:"id"`
}

type pinRequest struct {
	ID  int64  `json:"id"`
	PIN string `json:"pin"`
}

func (s *Server) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		PNO      string `json:"pno"`
		Password string `json:"password"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.auth.Login(ctx, in.PNO, in.Password))
}

func (s *Server) GetAircraft(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.aircraft.GetByID(ctx, in.ID))
}

func (s *Server) InitiateBFS(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bfs.InitiateInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.Initiate(ctx, actorID(ctx), in))
}

func (s *Server) GetBFS(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.Get(ctx, in.ID))
}

func (s *Server) FSIInitialAuth(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.FSIInitialAuth(ctx, in.ID, actorID(ctx), in.PIN))
}

func (s *Server) AssignPersonnel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID int64 `json:"id"`
		bfs.AssignInput
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.AssignPersonnel(ctx, in.ID, actorID(ctx), in.AssignInput))
}

func (s *Server) SignTradesman(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID    int64  `json:"id"`
		Trade string `json:"trade"`
		PIN   string `json:"pin"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.SignTradesman(ctx, in.ID, actorID(ctx), in.Trade, in.PIN))
}

func (s *Server) SignSupervisor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.SignSupervisor(ctx, in.ID, actorID(ctx), in.PIN))
}

func (s *Server) SignFSI(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.bfs.SignFSI(ctx, in.ID, actorID(ctx), in.PIN))
}

func (s *Server) CreateAcceptance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in acceptance.CreateInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.acceptances.Create(ctx, actorID(ctx), in))
}

func (s *Server) GetAcceptance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.acceptances.Get(ctx, in.ID))
}

func (s *Server) SignPilotAcceptance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.acceptances.SignPilot(ctx, in.ID, actorID(ctx), in.PIN))
}

func (s *Server) RejectAcceptance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		ID      int64  `json:"id"`
		PIN     string `json:"pin"`
		Remarks string `json:"remarks"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.acceptances.Reject(ctx, in.ID, actorID(ctx), in.PIN, in.Remarks))
}

func (s *Server) CreatePostFlight(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in postflight.CreateInput
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.postflights.Create(ctx, actorID(ctx), in))
}

func (s *Server) GetPostFlight(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.postflights.Get(ctx, in.ID))
}

func (s *Server) SignPilotPostFlight(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.postflights.SignPilot(ctx, in.ID, actorID(ctx), in.PIN))
}

func (s *Server) SignEngineerPostFlight(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in pinRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return encode(s.postflights.SignEngineer(ctx, in.ID, actorID(ctx), in.PIN))
}

// decode copies a Struct into dst through its JSON form.
func decode(req *structpb.Struct, dst any) error {
	if req == nil {
		return nil
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return domain.ErrInvalidInput.With("%v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return domain.ErrInvalidInput.With("%v", err)
	}
	return nil
}

// encode renders a service result as a Struct, passing service errors through.
func encode[T any](v T, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
