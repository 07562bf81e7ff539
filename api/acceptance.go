package api

import (
	"net/http"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/acceptance"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AcceptanceHandler struct {
	service acceptance.AcceptanceUseCase
	logger  *zap.Logger
}

func NewAcceptanceHandler(service acceptance.AcceptanceUseCase, logger *zap.Logger) *AcceptanceHandler {
	return &AcceptanceHandler{service: service, logger: logger}
}

func (h *AcceptanceHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/sign_pilot", h.signPilot)
	router.POST("/:id/reject", h.reject)
}

// create godoc
// @Summary  Open a pilot acceptance for an approved BFS record
// @Tags     acceptance
// @Accept   json
// @Produce  json
// @Param    body body acceptance.CreateInput true "BFS record, checks and readings"
// @Success  201 {object} domain.PilotAcceptance
// @Failure  400,404 {object} errorResponse
// @Router   /pilot-acceptance [post]
func (h *AcceptanceHandler) create(c *gin.Context) {
	var req acceptance.CreateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.service.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AcceptanceHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	h.respond(c, a, err)
}

// signPilot godoc
// @Summary  Pilot accepts the aircraft
// @Tags     acceptance
// @Accept   json
// @Produce  json
// @Param    id   path int        true "acceptance id"
// @Param    body body pinRequest true "pilot PIN"
// @Success  200 {object} domain.PilotAcceptance
// @Failure  400,403 {object} errorResponse
// @Router   /pilot-acceptance/{id}/sign_pilot [post]
func (h *AcceptanceHandler) signPilot(c *gin.Context) {
	id, err := pathID(c)
	var req pinRequest
	if err == nil {
		err = bindJSON(c, &req)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.service.SignPilot(c.Request.Context(), id, actorID(c), req.PIN)
	h.respond(c, a, err)
}

func (h *AcceptanceHandler) reject(c *gin.Context) {
	id, err := pathID(c)
	var req rejectRequest
	if err == nil {
		err = bindJSON(c, &req)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.service.Reject(c.Request.Context(), id, actorID(c), req.PIN, req.Remarks)
	h.respond(c, a, err)
}

func (h *AcceptanceHandler) respond(c *gin.Context, a *domain.PilotAcceptance, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
