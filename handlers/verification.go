package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/mailbox"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"github.com/gin-gonic/gin"
)

// VerificationHandler serves the one-shot and bounded-wait code lookups used
// during manual logins.
type VerificationHandler struct {
	codes mailbox.CodeRetriever
}

func NewVerificationHandler(codes mailbox.CodeRetriever) *VerificationHandler {
	return &VerificationHandler{codes: codes}
}

// FetchCodeHandler does a single mailbox lookup.
func (h *VerificationHandler) FetchCodeHandler(c *gin.Context) {
	result, err := h.codes.FetchCode(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "MAILBOX_ERROR", err.Error())
		return
	}
	if !result.Found {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"code":            result.Code,
		"sourceTimestamp": result.SourceTimestamp,
	})
}

type waitCodeRequest struct {
	TimeoutMs      int `json:"timeoutMs"`
	PollIntervalMs int `json:"pollIntervalMs"`
}

// WaitCodeHandler polls the mailbox until a code arrives or the budget
// elapses.
func (h *VerificationHandler) WaitCodeHandler(c *gin.Context) {
	req := waitCodeRequest{TimeoutMs: 60000, PollIntervalMs: 3000}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.codes.WaitForCode(c.Request.Context(),
		time.Duration(req.TimeoutMs)*time.Millisecond,
		time.Duration(req.PollIntervalMs)*time.Millisecond)
	if errors.Is(err, mailbox.ErrTimeout) {
		utils.JSONError(c, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "MAILBOX_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "code": code})
}
