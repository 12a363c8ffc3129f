package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/config"
	syncsvc "github.com/SNS-EUGENE/sto-mediacenter-sub001/services/sync"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"github.com/gin-gonic/gin"
)

// SyncHandler serves the sync engine endpoints.
type SyncHandler struct {
	engine syncsvc.Engine
}

func NewSyncHandler(engine syncsvc.Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

type runSyncRequest struct {
	MaxRecords  int   `json:"maxRecords"`
	FetchDetail *bool `json:"fetchDetail"`
}

// RunSyncHandler runs one full sync pass. Body fields are optional; config
// supplies the defaults.
func (h *SyncHandler) RunSyncHandler(c *gin.Context) {
	var req runSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxRecords := req.MaxRecords
	if maxRecords <= 0 {
		maxRecords = config.AppConfig.SyncMaxRecords
	}
	fetchDetail := config.AppConfig.SyncFetchDetail
	if req.FetchDetail != nil {
		fetchDetail = *req.FetchDetail
	}

	result, err := h.engine.Sync(c.Request.Context(), maxRecords, fetchDetail)
	if errors.Is(err, syncsvc.ErrAlreadySyncing) {
		utils.JSONError(c, http.StatusConflict, "ALREADY_SYNCING", err.Error())
		return
	}
	if err != nil {
		respondPortalError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncStatusHandler reports the engine's current state.
func (h *SyncHandler) SyncStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// ReseedSnapshotHandler re-seeds the status snapshot from durable storage.
func (h *SyncHandler) ReseedSnapshotHandler(c *gin.Context) {
	if err := h.engine.InitializeStatusMap(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
