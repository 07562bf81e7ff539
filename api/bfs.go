package api

import (
	"net/http"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/bfs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BFSHandler struct {
	service bfs.BFSUseCase
	logger  *zap.Logger
}

func NewBFSHandler(service bfs.BFSUseCase, logger *zap.Logger) *BFSHandler {
	return &BFSHandler{service: service, logger: logger}
}

func (h *BFSHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/fsi_initial_auth", h.fsiInitialAuth)
	router.POST("/:id/assign_personnel", h.assignPersonnel)
	router.POST("/:id/sign_tradesman", h.signTradesman)
	router.POST("/:id/sign_supervisor", h.signSupervisor)
	router.POST("/:id/sign_fsi", h.signFSI)
}

// create godoc
// @Summary  Start a Before Flying Service record
// @Tags     bfs
// @Accept   json
// @Produce  json
// @Param    body body bfs.InitiateInput true "aircraft and pre-service readings"
// @Success  201 {object} domain.BFS
// @Failure  400,404 {object} errorResponse
// @Router   /before-flying-service [post]
func (h *BFSHandler) create(c *gin.Context) {
	var req bfs.InitiateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	record, err := h.service.Initiate(c.Request.Context(), actorID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *BFSHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	record, err := h.service.Get(c.Request.Context(), id)
	h.respond(c, record, err)
}

// fsiInitialAuth godoc
// @Summary  FSI initial authentication
// @Tags     bfs
// @Accept   json
// @Produce  json
// @Param    id   path int        true "BFS record id"
// @Param    body body pinRequest true "FSI PIN"
// @Success  200 {object} domain.BFS
// @Failure  400,403 {object} errorResponse
// @Router   /before-flying-service/{id}/fsi_initial_auth [post]
func (h *BFSHandler) fsiInitialAuth(c *gin.Context) {
	var req pinRequest
	id, ok := h.bind(c, &req)
	if !ok {
		return
	}
	record, err := h.service.FSIInitialAuth(c.Request.Context(), id, actorID(c), req.PIN)
	h.respond(c, record, err)
}

// assignPersonnel godoc
// @Summary  Assign tradesmen and supervisor
// @Tags     bfs
// @Accept   json
// @Produce  json
// @Param    id   path int             true "BFS record id"
// @Param    body body bfs.AssignInput true "user id per trade"
// @Success  200 {object} domain.BFS
// @Failure  400,404 {object} errorResponse
// @Router   /before-flying-service/{id}/assign_personnel [post]
func (h *BFSHandler) assignPersonnel(c *gin.Context) {
	var req bfs.AssignInput
	id, ok := h.bind(c, &req)
	if !ok {
		return
	}
	record, err := h.service.AssignPersonnel(c.Request.Context(), id, actorID(c), req)
	h.respond(c, record, err)
}

// signTradesman godoc
// @Summary  Trade signature, verified against the trade's assignee
// @Tags     bfs
// @Accept   json
// @Produce  json
// @Param    id   path int              true "BFS record id"
// @Param    body body tradeSignRequest true "trade code and assignee PIN"
// @Success  200 {object} domain.BFS
// @Failure  400,403 {object} errorResponse
// @Router   /before-flying-service/{id}/sign_tradesman [post]
func (h *BFSHandler) signTradesman(c *gin.Context) {
	var req tradeSignRequest
	id, ok := h.bind(c, &req)
	if !ok {
		return
	}
	record, err := h.service.SignTradesman(c.Request.Context(), id, actorID(c), req.Trade, req.PIN)
	h.respond(c, record, err)
}

func (h *BFSHandler) signSupervisor(c *gin.Context) {
	var req pinRequest
	id, ok := h.bind(c, &req)
	if !ok {
		return
	}
	record, err := h.service.SignSupervisor(c.Request.Context(), id, actorID(c), req.PIN)
	h.respond(c, record, err)
}

// signFSI godoc
// @Summary  FSI final approval
// @Tags     bfs
// @Accept   json
// @Produce  json
// @Param    id   path int        true "BFS record id"
// @Param    body body pinRequest true "FSI PIN"
// @Success  200 {object} domain.BFS
// @Failure  400,403 {object} errorResponse
// @Router   /before-flying-service/{id}/sign_fsi [post]
func (h *BFSHandler) signFSI(c *gin.Context) {
	var req pinRequest
	id, ok := h.bind(c, &req)
	if !ok {
		return
	}
	record, err := h.service.SignFSI(c.Request.Context(), id, actorID(c), req.PIN)
	h.respond(c, record, err)
}

func (h *BFSHandler) bind(c *gin.Context, req any) (int64, bool) {
	id, err := pathID(c)
	if err == nil {
		err = bindJSON(c, req)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return 0, false
	}
	return id, true
}

func (h *BFSHandler) respond(c *gin.Context, record *domain.BFS, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
