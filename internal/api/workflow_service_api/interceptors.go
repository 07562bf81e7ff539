package workflow_service_api

import (
	"context"
	"strings"

	"github.com/Domenick1991/flightline/internal/api/grpcerr"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type userKey struct{}

// WithUser returns ctx carrying the authenticated caller.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey{}).(*domain.User)
	return u
}

func actorID(ctx context.Context) int64 {
	if u := UserFrom(ctx); u != nil {
		return u.ID
	}
	return 0
}

// ErrorInterceptor converts workflow errors into gRPC statuses and logs
// unexpected failures.
func ErrorInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if grpcerr.Internal(err) && logger != nil {
			logger.Error("rpc failed", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return nil, grpcerr.Status(err).Err()
	}
}

// AuthInterceptor resolves the bearer token in the authorization metadata.
// Login is the only method served without a session.
func AuthInterceptor(sessions auth.AuthUseCase) grpc.UnaryServerInterceptor {
	login := FullMethod("Login")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if info.FullMethod == login {
			return handler(ctx, req)
		}
		token := tokenFromMetadata(ctx)
		if token == "" {
			return nil, domain.ErrUnauthenticated
		}
		user, err := sessions.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return handler(WithUser(ctx, user), req)
	}
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
		if !ok {
			continue
		}
		switch strings.ToLower(scheme) {
		case "bearer", "token":
			return strings.TrimSpace(token)
		}
	}
	return ""
}
