package api

import (
	"net/http"

	"github.com/Domenick1991/flightline/internal/service/aircraft"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AircraftHandler struct {
	service aircraft.AircraftUseCase
	logger  *zap.Logger
}

func NewAircraftHandler(service aircraft.AircraftUseCase, logger *zap.Logger) *AircraftHandler {
	return &AircraftHandler{service: service, logger: logger}
}

func (h *AircraftHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
}

// get godoc
// @Summary  Aircraft telemetry
// @Tags     aircraft
// @Produce  json
// @Param    id path int true "aircraft id"
// @Success  200 {object} domain.Aircraft
// @Failure  404 {object} errorResponse
// @Router   /aircraft/{id} [get]
func (h *AircraftHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
