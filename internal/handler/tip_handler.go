// internal/handler/tip_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/internal/usecase"
	"tipkesho-settlement/pkg/response"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TipHandler struct {
	tipUC  *usecase.TipUsecase
	logger *zap.Logger
}

func NewTipHandler(tipUC *usecase.TipUsecase, logger *zap.Logger) *TipHandler {
	return &TipHandler{
		tipUC:  tipUC,
		logger: logger,
	}
}

// HandleSendTip handles POST /api/v1/tips: the external-provider settlement
// path.
func (h *TipHandler) HandleSendTip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)

	var req domain.SendTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Info("failed to decode tip request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, string(xerrors.CodeInvalidArgument), "invalid request body")
		return
	}

	receipt, err := h.tipUC.SendTip(ctx, sess, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, receipt)
}

// HandleSendDirectTip handles POST /api/v1/tips/direct: the in-app path with
// no provider call.
func (h *TipHandler) HandleSendDirectTip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)

	var req domain.SendTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Info("failed to decode direct tip request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, string(xerrors.CodeInvalidArgument), "invalid request body")
		return
	}

	receipt, err := h.tipUC.SendDirectTip(ctx, sess, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, receipt)
}

// HandleGetTip handles GET /api/v1/tips/{tx_ref}.
func (h *TipHandler) HandleGetTip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	txRef := chi.URLParam(r, "tx_ref")

	tip, err := h.tipUC.GetTip(ctx, sess, txRef)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, tip)
}

// writeError maps the settlement error taxonomy onto HTTP statuses.
// FailedPrecondition and Internal deliberately hide details from the caller;
// the specifics are already logged server-side.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := xerrors.CodeOf(err)

	switch code {
	case xerrors.CodeUnauthenticated:
		response.Error(w, http.StatusUnauthorized, string(code), publicMessage(err))
	case xerrors.CodeInvalidArgument:
		response.Error(w, http.StatusBadRequest, string(code), publicMessage(err))
	case xerrors.CodeFailedPrecondition:
		response.Error(w, http.StatusServiceUnavailable, string(code), "payment provider configuration error")
	case xerrors.CodeAborted:
		response.Error(w, http.StatusUnprocessableEntity, string(code), publicMessage(err))
	default:
		response.Error(w, http.StatusInternalServerError, string(code), publicMessage(err))
	}
}

// publicMessage returns the taxonomy message without the wrapped cause chain.
func publicMessage(err error) string {
	var se *xerrors.SettlementError
	if errors.As(err, &se) {
		return se.Msg
	}
	return "internal error"
}
