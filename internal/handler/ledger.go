package handler

import (
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/billing"
	"github.com/Homesapp/HomesappNew-sub000/internal/middleware"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler 负责财务台账接口
type LedgerHandler struct {
	Stores          *store.Stores
	Aggregator      *billing.Aggregator
	DefaultCurrency string
	PageSize        int
}

func NewLedgerHandler(stores *store.Stores, agg *billing.Aggregator, defaultCurrency string, pageSize int) *LedgerHandler {
	return &LedgerHandler{Stores: stores, Aggregator: agg, DefaultCurrency: defaultCurrency, PageSize: pageSize}
}

type createLedgerReq struct {
	Direction        models.Direction      `json:"direction" binding:"required"`
	Category         models.LedgerCategory `json:"category" binding:"required,max=32"`
	Status           models.LedgerStatus   `json:"status"`
	Description      string                `json:"description" binding:"max=255"`
	GrossAmount      decimal.Decimal       `json:"grossAmount"`
	Fees             decimal.Decimal       `json:"fees"`
	Currency         string                `json:"currency"`
	DueDate          *string               `json:"dueDate"`
	PerformedDate    *string               `json:"performedDate"`
	PayerRole        string                `json:"payerRole" binding:"max=16"`
	PayeeRole        string                `json:"payeeRole" binding:"max=16"`
	PayerName        string                `json:"payerName" binding:"max=128"`
	ContractID       *string               `json:"contractId"`
	UnitID           *string               `json:"unitId"`
	OwnerID          *string               `json:"ownerId"`
	CondominiumID    *string               `json:"condominiumId"`
	PaymentMethod    string                `json:"paymentMethod" binding:"max=32"`
	PaymentReference string                `json:"paymentReference" binding:"max=128"`
	ProofURL         string                `json:"proofUrl" binding:"max=512"`
	Notes            string                `json:"notes"`
}

type updateLedgerReq struct {
	Category         *models.LedgerCategory `json:"category"`
	Status           *models.LedgerStatus   `json:"status"`
	Description      *string                `json:"description"`
	GrossAmount      *decimal.Decimal       `json:"grossAmount"`
	Fees             *decimal.Decimal       `json:"fees"`
	DueDate          *string                `json:"dueDate"`
	PerformedDate    *string                `json:"performedDate"`
	PaymentMethod    *string                `json:"paymentMethod"`
	PaymentReference *string                `json:"paymentReference"`
	ProofURL         *string                `json:"proofUrl"`
	Notes            *string                `json:"notes"`
}

// ledgerFilter 从查询参数构造过滤条件，list 和导出共用
func ledgerFilter(c *gin.Context, defaultPageSize int) (store.LedgerFilter, error) {
	f := store.LedgerFilter{
		Category:      models.LedgerCategory(c.Query("category")),
		OwnerID:       c.Query("owner_id"),
		ContractID:    c.Query("contract_id"),
		UnitID:        c.Query("unit_id"),
		CondominiumID: c.Query("condominium_id"),
		Search:        c.Query("q"),
		Sort:          c.Query("sort"),
		Order:         c.Query("order"),
	}
	direction, err := queryEnum(c, "direction", models.Direction.Valid)
	if err != nil {
		return f, err
	}
	if direction != nil {
		f.Direction = *direction
	}
	status, err := queryEnum(c, "status", models.LedgerStatus.Valid)
	if err != nil {
		return f, err
	}
	if status != nil {
		f.Status = *status
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.Page, err = queryInt(c, "page", 1); err != nil {
		return f, err
	}
	if f.PageSize, err = queryInt(c, "page_size", defaultPageSize); err != nil {
		return f, err
	}
	return f, nil
}

// CreateEntry POST /ledger 手工记账（佣金、业主打款、调整等）
func (h *LedgerHandler) CreateEntry(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req createLedgerReq
	if !bindJSON(c, &req) {
		return
	}
	due, err := optionalDate("dueDate", req.DueDate)
	if err != nil {
		util.Fail(c, err)
		return
	}
	performed, err := optionalDate("performedDate", req.PerformedDate)
	if err != nil {
		util.Fail(c, err)
		return
	}

	e := &models.FinancialTransaction{
		Direction:        req.Direction,
		Category:         req.Category,
		Status:           req.Status,
		Description:      req.Description,
		GrossAmount:      req.GrossAmount,
		Fees:             req.Fees,
		Currency:         req.Currency,
		DueDate:          due,
		PerformedDate:    performed,
		PayerRole:        req.PayerRole,
		PayeeRole:        req.PayeeRole,
		PayerName:        req.PayerName,
		ContractID:       req.ContractID,
		UnitID:           req.UnitID,
		OwnerID:          req.OwnerID,
		CondominiumID:    req.CondominiumID,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ProofURL:         req.ProofURL,
		Notes:            req.Notes,
		CreatedBy:        middleware.ActorID(c),
	}
	if e.Currency == "" {
		e.Currency = h.DefaultCurrency
	}
	if err := h.Stores.Ledger.Create(c.Request.Context(), agencyID, e); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": e})
}

// ListEntries GET /ledger 分页 + 过滤 + 关键字
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	f, err := ledgerFilter(c, h.PageSize)
	if err != nil {
		util.Fail(c, err)
		return
	}
	items, total, err := h.Stores.Ledger.List(c.Request.Context(), agencyID, f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  f.Page,
		"size":  f.PageSize,
	})
}

func (h *LedgerHandler) GetEntry(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	e, err := h.Stores.Ledger.Get(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": e})
}

func (h *LedgerHandler) UpdateEntry(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req updateLedgerReq
	if !bindJSON(c, &req) {
		return
	}
	due, err := optionalDate("dueDate", req.DueDate)
	if err != nil {
		util.Fail(c, err)
		return
	}
	performed, err := optionalDate("performedDate", req.PerformedDate)
	if err != nil {
		util.Fail(c, err)
		return
	}
	e, err := h.Stores.Ledger.Update(c.Request.Context(), agencyID, c.Param("id"), store.LedgerUpdate{
		Category:         req.Category,
		Status:           req.Status,
		Description:      req.Description,
		GrossAmount:      req.GrossAmount,
		Fees:             req.Fees,
		DueDate:          due,
		PerformedDate:    performed,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ProofURL:         req.ProofURL,
		Notes:            req.Notes,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": e})
}

// ReconcileEntry POST /ledger/:id/reconcile 对账，仅限已过账的记录
func (h *LedgerHandler) ReconcileEntry(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	e, err := h.Stores.Ledger.Reconcile(c.Request.Context(), agencyID, c.Param("id"), time.Now().UTC())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": e})
}

func (h *LedgerHandler) DeleteEntry(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	if err := h.Stores.Ledger.Delete(c.Request.Context(), agencyID, c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}

// Summary GET /ledger/summary 账务汇总（每次实时计算）
func (h *LedgerHandler) Summary(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	sum, err := h.Aggregator.Summary(c.Request.Context(), agencyID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"summary": sum})
}
