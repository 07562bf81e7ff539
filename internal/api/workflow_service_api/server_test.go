package workflow_service_api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/Domenick1991/flightline/internal/service/bfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Login(ctx context.Context, pno, password string) (*auth.Session, error) {
	args := m.Called(ctx, pno, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockBFSUseCase struct {
	mock.Mock
}

func (m *MockBFSUseCase) result(args mock.Arguments) (*domain.BFS, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BFS), args.Error(1)
}

func (m *MockBFSUseCase) Initiate(ctx context.Context, actorID int64, input bfs.InitiateInput) (*domain.BFS, error) {
	return m.result(m.Called(ctx, actorID, input))
}

func (m *MockBFSUseCase) Get(ctx context.Context, id int64) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockBFSUseCase) FSIInitialAuth(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id, actorID, pin))
}

func (m *MockBFSUseCase) AssignPersonnel(ctx context.Context, id, actorID int64, input bfs.AssignInput) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id, actorID, input))
}

func (m *MockBFSUseCase) SignTradesman(ctx context.Context, id, actorID int64, trade, pin string) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id, actorID, trade, pin))
}

func (m *MockBFSUseCase) SignSupervisor(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id, actorID, pin))
}

func (m *MockBFSUseCase) SignFSI(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	return m.result(m.Called(ctx, id, actorID, pin))
}

// dial serves srv over an in-memory listener and returns a connected client.
func dial(t *testing.T, srv *Server, authSvc auth.AuthUseCase, logger *zap.Logger) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer(grpc.ChainUnaryInterceptor(ErrorInterceptor(logger), AuthInterceptor(authSvc)))
	RegisterWorkflowServiceServer(g, srv)
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestWorkflowService_AssignPersonnel(t *testing.T) {
	authSvc := new(MockAuthUseCase)
	bfsSvc := new(MockBFSUseCase)
	conn := dial(t, NewServer(authSvc, nil, bfsSvc, nil, nil), authSvc, zap.NewNop())

	authSvc.On("Authenticate", mock.Anything, "tok").Return(&domain.User{ID: 7, Active: true}, nil)
	input := bfs.AssignInput{AE: 10, Supervisor: 15, SupervisorRequired: true}
	bfsSvc.On("AssignPersonnel", mock.Anything, int64(3), int64(7), input).
		Return(&domain.BFS{ID: 3, Status: domain.BFSStatusPersonnelSelection, PersonnelAdded: true}, nil)

	req := mustStruct(t, map[string]any{"id": 3, "ae": 10, "supervisor": 15, "supervisor_required": true})
	resp := new(structpb.Struct)
	err := conn.Invoke(withToken("tok"), FullMethod("AssignPersonnel"), req, resp)
	require.NoError(t, err)

	assert.Equal(t, float64(3), resp.Fields["id"].GetNumberValue())
	assert.Equal(t, "PERSONNEL_SELECTION", resp.Fields["status"].GetStringValue())
	assert.True(t, resp.Fields["personnel_added"].GetBoolValue())
	bfsSvc.AssertExpectations(t)
}

func TestWorkflowService_DomainErrorStatus(t *testing.T) {
	authSvc := new(MockAuthUseCase)
	bfsSvc := new(MockBFSUseCase)
	conn := dial(t, NewServer(authSvc, nil, bfsSvc, nil, nil), authSvc, zap.NewNop())

	authSvc.On("Authenticate", mock.Anything, "tok").Return(&domain.User{ID: 7}, nil)
	bfsSvc.On("SignFSI", mock.Anything, int64(3), int64(7), "1234").Return(nil, domain.ErrSignaturesIncomplete)

	err := conn.Invoke(withToken("tok"), FullMethod("SignFSI"), mustStruct(t, map[string]any{"id": 3, "pin": "1234"}), new(structpb.Struct))
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "SIGNATURES_INCOMPLETE: assigned personnel have not signed", st.Message())
}

func TestWorkflowService_InternalErrorHidden(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	authSvc := new(MockAuthUseCase)
	bfsSvc := new(MockBFSUseCase)
	conn := dial(t, NewServer(authSvc, nil, bfsSvc, nil, nil), authSvc, zap.New(core))

	authSvc.On("Authenticate", mock.Anything, "tok").Return(&domain.User{ID: 7}, nil)
	bfsSvc.On("Get", mock.Anything, int64(9)).Return(nil, errors.New("connection reset by peer"))

	err := conn.Invoke(withToken("tok"), FullMethod("GetBFS"), mustStruct(t, map[string]any{"id": 9}), new(structpb.Struct))
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "INTERNAL: internal error", st.Message())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "rpc failed", logs.All()[0].Message)
}

func TestWorkflowService_RequiresSession(t *testing.T) {
	authSvc := new(MockAuthUseCase)
	conn := dial(t, NewServer(authSvc, nil, new(MockBFSUseCase), nil, nil), authSvc, zap.NewNop())

	err := conn.Invoke(context.Background(), FullMethod("GetBFS"), mustStruct(t, map[string]any{"id": 1}), new(structpb.Struct))
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())

	authSvc.On("Authenticate", mock.Anything, "stale").Return(nil, domain.ErrUnauthenticated.With("session expired"))
	err = conn.Invoke(withToken("stale"), FullMethod("GetBFS"), mustStruct(t, map[string]any{"id": 1}), new(structpb.Struct))
	st, _ = status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
}

func TestWorkflowService_LoginIsPublic(t *testing.T) {
	authSvc := new(MockAuthUseCase)
	conn := dial(t, NewServer(authSvc, nil, nil, nil, nil), authSvc, zap.NewNop())

	authSvc.On("Login", mock.Anything, "P-1", "secret").
		Return(&auth.Session{Token: "tok", User: &domain.User{ID: 1, PNO: "P-1"}}, nil)

	resp := new(structpb.Struct)
	err := conn.Invoke(context.Background(), FullMethod("Login"), mustStruct(t, map[string]any{"pno": "P-1", "password": "secret"}), resp)
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Fields["token"].GetStringValue())
	authSvc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestTokenFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Token abc"))
	assert.Equal(t, "abc", tokenFromMetadata(ctx))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic abc"))
	assert.Empty(t, tokenFromMetadata(ctx))
	assert.Empty(t, tokenFromMetadata(context.Background()))
}

func TestDecodeRejectsMismatchedTypes(t *testing.T) {
	var in pinRequest
	err := decode(mustStruct(t, map[string]any{"id": "three"}), &in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
