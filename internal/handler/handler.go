// Package handler содержит HTTP-обработчики API бэк-офиса типографии.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/cashback"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/middleware"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/repository"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterCredit(ctx context.Context, ownerID int64) (*model.Credit, error)
	GetCredit(ctx context.Context, creditID int64) (*model.Credit, error)
	CreateDeposit(ctx context.Context, d model.Deposit) (int64, error)
	ConfirmDeposit(ctx context.Context, depositID, employeeID int64) error
	RejectDeposit(ctx context.Context, depositID, employeeID int64) error
	GetDeposits(ctx context.Context, creditID int64) ([]model.Deposit, error)
	RecomputeBalance(ctx context.Context, creditID int64) (int64, error)
	GetCashBack(ctx context.Context, creditID int64) (*model.CashBack, error)
	RecordOrder(ctx context.Context, ev model.OrderEvent) error
	ConfirmCashBack(ctx context.Context, creditID, employeeID int64) (int64, error)
	QuotePrice(sheet model.Sheet, piece model.CutSize) float64
	SaveSheet(ctx context.Context, sheet *model.Sheet) error
	SaveCutSize(ctx context.Context, size *model.CutSize) error
	GetSheetPrice(ctx context.Context, sheetID, sizeID int64) (float64, error)
}

// Handler реализует HTTP-обработчики API бэк-офиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func urlParamInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type registerCreditRequest struct {
	OwnerID int64 `json:"owner_id"`
}

type creditResponse struct {
	ID          int64 `json:"id"`
	OwnerID     int64 `json:"owner_id"`
	TotalAmount int64 `json:"total_amount"`
}

// RegisterCredit создаёт кредитный счёт для нового владельца.
func (h *Handler) RegisterCredit(w http.ResponseWriter, r *http.Request) {
	var req registerCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OwnerID <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	credit, err := h.service.RegisterCredit(r.Context(), req.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrCreditExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register credit error", zap.Error(err), zap.Int64("ownerID", req.OwnerID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(creditResponse{ID: credit.ID, OwnerID: credit.OwnerID, TotalAmount: credit.TotalAmount})
}

// GetBalance возвращает баланс кредитного счёта.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	creditID, ok := urlParamInt64(r, "creditID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	credit, err := h.service.GetCredit(r.Context(), creditID)
	if err != nil {
		if errors.Is(err, repository.ErrCreditNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get balance error", zap.Error(err), zap.Int64("creditID", creditID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, creditResponse{ID: credit.ID, OwnerID: credit.OwnerID, TotalAmount: credit.TotalAmount})
}

type recomputeResponse struct {
	TotalAmount int64 `json:"total_amount"`
}

// RecomputeBalance пересчитывает баланс счёта по книге депозитов.
func (h *Handler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	creditID, ok := urlParamInt64(r, "creditID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	total, err := h.service.RecomputeBalance(r.Context(), creditID)
	if err != nil {
		if errors.Is(err, repository.ErrCreditNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("recompute balance error", zap.Error(err), zap.Int64("creditID", creditID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, recomputeResponse{TotalAmount: total})
}

type depositRequest struct {
	CreditID        int64  `json:"credit_id"`
	TotalPrice      int64  `json:"total_price"`
	Income          bool   `json:"income"`
	ConfirmStatus   string `json:"confirm_status,omitempty"`
	DepositType     string `json:"deposit_type,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`
	Description     string `json:"description,omitempty"`
	DepositDate     string `json:"deposit_date,omitempty"`
}

type depositCreatedResponse struct {
	ID int64 `json:"id"`
}

// CreateDeposit создаёт депозит от имени текущего сотрудника.
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.GetEmployeeIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.CreditID <= 0 || req.TotalPrice < 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	d := model.Deposit{
		CreditID:        req.CreditID,
		TotalPrice:      req.TotalPrice,
		Income:          req.Income,
		ConfirmStatus:   model.ConfirmStatus(req.ConfirmStatus),
		DepositType:     model.DepositType(req.DepositType),
		TransactionType: model.TransactionType(req.TransactionType),
		Description:     req.Description,
		SubmitBy:        &employeeID,
	}

	if req.DepositDate != "" {
		depositDate, err := time.Parse(time.RFC3339, req.DepositDate)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		d.DepositDate = depositDate
	}

	id, err := h.service.CreateDeposit(r.Context(), d)
	if err != nil {
		if errors.Is(err, repository.ErrCreditNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("create deposit error", zap.Error(err), zap.Int64("creditID", req.CreditID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(depositCreatedResponse{ID: id})
}

func (h *Handler) resolveDeposit(w http.ResponseWriter, r *http.Request, confirmed bool) {
	employeeID, ok := middleware.GetEmployeeIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	depositID, ok := urlParamInt64(r, "depositID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var err error
	if confirmed {
		err = h.service.ConfirmDeposit(r.Context(), depositID, employeeID)
	} else {
		err = h.service.RejectDeposit(r.Context(), depositID, employeeID)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDepositNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrDepositResolved):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("resolve deposit error", zap.Error(err), zap.Int64("depositID", depositID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ConfirmDeposit подтверждает ожидающий депозит.
func (h *Handler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	h.resolveDeposit(w, r, true)
}

// RejectDeposit отклоняет ожидающий депозит.
func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	h.resolveDeposit(w, r, false)
}

type depositResponse struct {
	ID              int64  `json:"id"`
	TotalPrice      int64  `json:"total_price"`
	Income          bool   `json:"income"`
	ConfirmStatus   string `json:"confirm_status"`
	DepositType     string `json:"deposit_type"`
	TransactionType string `json:"transaction_type"`
	Description     string `json:"description,omitempty"`
	TrackingCode    string `json:"tracking_code,omitempty"`
	SubmitDate      string `json:"submit_date"`
	DepositDate     string `json:"deposit_date"`
}

// GetDeposits возвращает книгу депозитов счёта.
func (h *Handler) GetDeposits(w http.ResponseWriter, r *http.Request) {
	creditID, ok := urlParamInt64(r, "creditID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	deposits, err := h.service.GetDeposits(r.Context(), creditID)
	if err != nil {
		h.logger.Error("get deposits error", zap.Error(err), zap.Int64("creditID", creditID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(deposits) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]depositResponse, 0, len(deposits))
	for _, d := range deposits {
		resp = append(resp, depositResponse{
			ID:              d.ID,
			TotalPrice:      d.TotalPrice,
			Income:          d.Income,
			ConfirmStatus:   string(d.ConfirmStatus),
			DepositType:     string(d.DepositType),
			TransactionType: string(d.TransactionType),
			Description:     d.Description,
			TrackingCode:    d.TrackingCode,
			SubmitDate:      d.SubmitDate.Format(time.RFC3339),
			DepositDate:     d.DepositDate.Format(time.RFC3339),
		})
	}

	writeJSON(w, resp)
}

type orderEventRequest struct {
	Order          string `json:"order"`
	UserID         int64  `json:"user_id"`
	TotalPrice     int64  `json:"total_price"`
	SubmitDate     string `json:"submit_date"`
	ParentCategory int64  `json:"parent_category"`
	StatusRole     string `json:"status_role"`
}

// RecordOrderEvent принимает событие заказа витрины и применяет его к кэшбэку владельца.
func (h *Handler) RecordOrderEvent(w http.ResponseWriter, r *http.Request) {
	var req orderEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.UserID <= 0 || req.TotalPrice < 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	submitDate, err := time.Parse(time.RFC3339, req.SubmitDate)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	role := model.OrderRoleSubmit
	if req.StatusRole == string(model.OrderRoleCancel) {
		role = model.OrderRoleCancel
	}

	err = h.service.RecordOrder(r.Context(), model.OrderEvent{
		OrderNumber:    req.Order,
		OwnerID:        req.UserID,
		TotalPrice:     req.TotalPrice,
		SubmitDate:     submitDate,
		ParentCategory: req.ParentCategory,
		StatusRole:     role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCreditNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("record order error", zap.Error(err), zap.String("order", req.Order))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type cashbackResponse struct {
	NowTotalOrderAmount int64                            `json:"now_total_order_amount"`
	NowCashback         int64                            `json:"now_cashback"`
	TmpTotalOrderAmount int64                            `json:"tmp_total_order_amount"`
	TmpCashback         int64                            `json:"tmp_cashback"`
	ManualPercent       float64                          `json:"manual_percent"`
	IsActive            bool                             `json:"is_active"`
	LastConfirm         bool                             `json:"last_confirm"`
	History             map[string]model.CashBackHistory `json:"history"`
}

// GetCashBack возвращает окна накопления и историю кэшбэка счёта.
func (h *Handler) GetCashBack(w http.ResponseWriter, r *http.Request) {
	creditID, ok := urlParamInt64(r, "creditID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cb, err := h.service.GetCashBack(r.Context(), creditID)
	if err != nil {
		if errors.Is(err, repository.ErrCashBackNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get cashback error", zap.Error(err), zap.Int64("creditID", creditID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, cashbackResponse{
		NowTotalOrderAmount: cb.NowTotalOrderAmount,
		NowCashback:         cb.NowCashback,
		TmpTotalOrderAmount: cb.TmpTotalOrderAmount,
		TmpCashback:         cb.TmpCashback,
		ManualPercent:       cb.ManualPercent,
		IsActive:            cb.IsActive,
		LastConfirm:         cb.LastConfirm,
		History:             cb.History,
	})
}

type confirmCashbackResponse struct {
	Paid int64 `json:"paid"`
}

// ConfirmCashBack подтверждает последний закрытый период кэшбэка счёта.
func (h *Handler) ConfirmCashBack(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.GetEmployeeIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	creditID, ok := urlParamInt64(r, "creditID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	paid, err := h.service.ConfirmCashBack(r.Context(), creditID, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCashBackNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, cashback.ErrInactive):
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		case errors.Is(err, cashback.ErrPeriodNotClosed):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("confirm cashback error", zap.Error(err), zap.Int64("creditID", creditID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, confirmCashbackResponse{Paid: paid})
}

type quoteSheet struct {
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	PurchasePrice float64 `json:"purchase_price"`
	CuttingPrice  float64 `json:"cutting_price"`
	SheetCount    int     `json:"sheet_count"`
}

type quotePiece struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

type quoteRequest struct {
	Sheet quoteSheet `json:"sheet"`
	Piece quotePiece `json:"piece"`
}

type priceResponse struct {
	Price float64 `json:"price"`
}

// QuotePrice рассчитывает цену заготовки по параметрам листа и размера без сохранения.
func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Sheet.Length <= 0 || req.Sheet.Width <= 0 || req.Piece.Length <= 0 || req.Piece.Width <= 0 {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	price := h.service.QuotePrice(
		model.Sheet{
			Length:        req.Sheet.Length,
			Width:         req.Sheet.Width,
			PurchasePrice: req.Sheet.PurchasePrice,
			CuttingPrice:  req.Sheet.CuttingPrice,
			SheetCount:    req.Sheet.SheetCount,
		},
		model.CutSize{Length: req.Piece.Length, Width: req.Piece.Width},
	)

	writeJSON(w, priceResponse{Price: price})
}

type sheetRequest struct {
	ID            int64   `json:"id,omitempty"`
	Name          string  `json:"name"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	PurchasePrice float64 `json:"purchase_price"`
	CuttingPrice  float64 `json:"cutting_price"`
	SheetCount    int     `json:"sheet_count"`
}

type savedResponse struct {
	ID int64 `json:"id"`
}

// SaveSheet сохраняет лист сырья и запускает каскадный пересчёт цен.
func (h *Handler) SaveSheet(w http.ResponseWriter, r *http.Request) {
	var req sheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Length <= 0 || req.Width <= 0 || req.SheetCount <= 0 {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	sheet := model.Sheet{
		ID:            req.ID,
		Name:          req.Name,
		Length:        req.Length,
		Width:         req.Width,
		PurchasePrice: req.PurchasePrice,
		CuttingPrice:  req.CuttingPrice,
		SheetCount:    req.SheetCount,
	}

	if err := h.service.SaveSheet(r.Context(), &sheet); err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("save sheet error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, savedResponse{ID: sheet.ID})
}

type cutSizeRequest struct {
	ID     int64   `json:"id,omitempty"`
	Name   string  `json:"name"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// SaveCutSize сохраняет размер реза и запускает каскадный пересчёт цен.
func (h *Handler) SaveCutSize(w http.ResponseWriter, r *http.Request) {
	var req cutSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Length <= 0 || req.Width <= 0 {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	size := model.CutSize{ID: req.ID, Name: req.Name, Length: req.Length, Width: req.Width}

	if err := h.service.SaveCutSize(r.Context(), &size); err != nil {
		if errors.Is(err, repository.ErrCutSizeNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("save cut size error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, savedResponse{ID: size.ID})
}

// GetSheetPrice возвращает сохранённую цену заготовки для пары лист×размер.
func (h *Handler) GetSheetPrice(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := urlParamInt64(r, "sheetID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sizeID, ok := urlParamInt64(r, "sizeID")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	price, err := h.service.GetSheetPrice(r.Context(), sheetID, sizeID)
	if err != nil {
		if errors.Is(err, repository.ErrPriceNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get sheet price error", zap.Error(err), zap.Int64("sheetID", sheetID), zap.Int64("sizeID", sizeID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, priceResponse{Price: price})
}
