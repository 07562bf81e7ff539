package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/postflight"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostFlightHandler struct {
	service postflight.PostFlightUseCase
	logger  *zap.Logger
}

func NewPostFlightHandler(service postflight.PostFlightUseCase, logger *zap.Logger) *PostFlightHandler {
	return &PostFlightHandler{service: service, logger: logger}
}

func (h *PostFlightHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/sign_pilot", h.signPilot)
	router.POST("/:id/sign_engineer", h.signEngineer)
}

// create godoc
// @Summary  Record the outcome of an accepted flight
// @Tags     postflight
// @Accept   json
// @Produce  json
// @Param    body body postflight.CreateInput true "flight data"
// @Success  201 {object} domain.PostFlight
// @Failure  400,404 {object} errorResponse
// @Router   /post-flying [post]
func (h *PostFlightHandler) create(c *gin.Context) {
	var req postflight.CreateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostFlightHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	h.respond(c, p, err)
}

func (h *PostFlightHandler) signPilot(c *gin.Context) {
	h.sign(c, h.service.SignPilot)
}

// signEngineer godoc
// @Summary  Engineer closes the record and commits aircraft telemetry
// @Tags     postflight
// @Accept   json
// @Produce  json
// @Param    id   path int        true "post flying record id"
// @Param    body body pinRequest true "engineer PIN"
// @Success  200 {object} domain.PostFlight
// @Failure  400,403 {object} errorResponse
// @Router   /post-flying/{id}/sign_engineer [post]
func (h *PostFlightHandler) signEngineer(c *gin.Context) {
	h.sign(c, h.service.SignEngineer)
}

func (h *PostFlightHandler) sign(c *gin.Context, fn func(ctx context.Context, id, actorID int64, pin string) (*domain.PostFlight, error)) {
	id, err := pathID(c)
	var req pinRequest
	if err == nil {
		err = bindJSON(c, &req)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := fn(c.Request.Context(), id, actorID(c), req.PIN)
	h.respond(c, p, err)
}

func (h *PostFlightHandler) respond(c *gin.Context, p *domain.PostFlight, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
