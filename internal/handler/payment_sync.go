package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payment-ledger-sync/internal/dto"
	"payment-ledger-sync/internal/middleware"
	"payment-ledger-sync/internal/model"
	"payment-ledger-sync/internal/repository"
	"payment-ledger-sync/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentSyncHandler struct {
	syncService service.PaymentSyncService
}

func NewPaymentSyncHandler(syncService service.PaymentSyncService) *PaymentSyncHandler {
	return &PaymentSyncHandler{
		syncService: syncService,
	}
}

func (h *PaymentSyncHandler) SyncPayments(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SyncPaymentsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Details: err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Details: err.Error()})
	}

	lastSyncTime, err := parseSyncTime(req.LastSyncTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid last_sync_time", Details: err.Error()})
	}

	actor, _ := c.Get(middleware.ContextUser).(*model.User)
	res, err := h.syncService.Sync(ctx, actor, service.SyncOptions{
		LastSyncTime: lastSyncTime,
		Mode:         model.SyncMode(req.SyncType),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		case errors.Is(err, service.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Details: err.Error()})
		case errors.Is(err, service.ErrSyncInProgress):
			return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Payment sync already running", Details: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to sync payments", Details: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, dto.SyncPaymentsResponse{
		Success:         true,
		Message:         res.Message,
		Count:           res.Count,
		SuccessfulSyncs: res.Successful,
		FailedSyncs:     res.Failed,
		SkippedSyncs:    res.Skipped,
	})
}

func (h *PaymentSyncHandler) LastSyncStatus(c echo.Context) error {
	status, err := h.syncService.LastStatus(c.Request().Context())
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no payment sync has run yet"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load sync status", Details: err.Error()})
	}

	return c.JSON(http.StatusOK, status)
}

func parseSyncTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", value)
	}
	return &t, nil
}
