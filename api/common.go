package api

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightline/internal/api/grpcerr"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "flightline.user"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type tradeSignRequest struct {
	Trade string `json:"trade"`
	PIN   string `json:"pin"`
}

type rejectRequest struct {
	PIN     string `json:"pin"`
	Remarks string `json:"remarks"`
}

// writeError renders err with the status derived from its gRPC code.
// Unexpected failures are logged and reported without detail.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	if grpcerr.Internal(err) && logger != nil {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(grpcerr.HTTPStatus(err), errorResponse{Error: grpcerr.Message(err), Code: grpcerr.Reason(err)})
}

// bindJSON decodes the request body into dst. An empty body leaves dst zero.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.ErrInvalidInput.With("%v", err)
	}
	return nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput.With("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	}
	return ""
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// actorID is the id of the authenticated caller, or 0 outside RequireSession.
func actorID(c *gin.Context) int64 {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return 0
}
