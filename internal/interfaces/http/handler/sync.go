package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// CredentialSyncer runs on-demand sync passes
type CredentialSyncer interface {
	SyncCredentialByID(ctx context.Context, id uuid.UUID, window *integration.SyncWindow) (*integration.SyncResult, error)
	SyncMerchant(ctx context.Context, merchantID uuid.UUID, window *integration.SyncWindow) (*integration.SyncResult, error)
	SyncAllActiveCredentials(ctx context.Context, window *integration.SyncWindow) (*integration.SyncBatchResult, error)
}

// PassRunner runs the scheduled pass out of band, sharing its overlap guard
type PassRunner interface {
	RunOnce(ctx context.Context) (*integration.SyncBatchResult, error)
}

// SyncHandler triggers order syncs manually
type SyncHandler struct {
	BaseHandler
	syncer   CredentialSyncer
	runner   PassRunner
	trailing time.Duration
	now      func() time.Time
}

// NewSyncHandler creates a new SyncHandler. runner may be nil when the
// scheduler is disabled; a bodiless run then syncs the trailing window itself.
func NewSyncHandler(syncer CredentialSyncer, runner PassRunner, trailing time.Duration) *SyncHandler {
	return &SyncHandler{syncer: syncer, runner: runner, trailing: trailing, now: time.Now}
}

// bindWindow reads the optional window body. An empty body means no window.
func (h *SyncHandler) bindWindow(c *gin.Context) (*integration.SyncWindow, bool) {
	var req dto.SyncWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, err.Error())
			return nil, false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return nil, false
	}
	window, err := req.Window()
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return window, true
}

// SyncCredential godoc
// @ID           syncCredential
// @Summary      Sync one credential now
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        id   path string                true  "Credential ID"
// @Param        body body dto.SyncWindowRequest false "Optional window"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /sync/credentials/{id} [post]
func (h *SyncHandler) SyncCredential(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	result, err := h.syncer.SyncCredentialByID(c.Request.Context(), id, window)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncResultResponse(result))
}

// SyncMerchant godoc
// @ID           syncMerchant
// @Summary      Sync the credential of a merchant now
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        id   path string                true  "Merchant ID"
// @Param        body body dto.SyncWindowRequest false "Optional window"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /sync/merchants/{id} [post]
func (h *SyncHandler) SyncMerchant(c *gin.Context) {
	merchantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	result, err := h.syncer.SyncMerchant(c.Request.Context(), merchantID, window)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncResultResponse(result))
}

// SyncAll godoc
// @ID           syncAllCredentials
// @Summary      Sync every active credential now
// @Description  Without a body the scheduled trailing window is synced and the call
// @Description  is rejected with 409 while a scheduled pass is running.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        body body dto.SyncWindowRequest false "Optional window"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /sync/run [post]
func (h *SyncHandler) SyncAll(c *gin.Context) {
	window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	var (
		batch *integration.SyncBatchResult
		err   error
	)
	switch {
	case window == nil && h.runner != nil:
		batch, err = h.runner.RunOnce(c.Request.Context())
	case window == nil:
		trailing := integration.TrailingWindow(h.now(), h.trailing)
		batch, err = h.syncer.SyncAllActiveCredentials(c.Request.Context(), &trailing)
	default:
		batch, err = h.syncer.SyncAllActiveCredentials(c.Request.Context(), window)
	}
	if errors.Is(err, scheduler.ErrOrderSyncAlreadyInProgress) {
		h.Error(c, http.StatusConflict, dto.ErrCodeSyncInProgress, err.Error())
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncBatchResponse(batch))
}
