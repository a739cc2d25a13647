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
	"go.uber.org/zap"
)

// PaymentHandler 负责应收款项相关接口
type PaymentHandler struct {
	Stores          *store.Stores
	Generator       *billing.Generator
	Coordinator     *billing.Coordinator
	UpcomingDays    int
	DefaultCurrency string
	Logger          *zap.Logger
}

func NewPaymentHandler(stores *store.Stores, gen *billing.Generator, coord *billing.Coordinator,
	upcomingDays int, defaultCurrency string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		Stores:          stores,
		Generator:       gen,
		Coordinator:     coord,
		UpcomingDays:    upcomingDays,
		DefaultCurrency: defaultCurrency,
		Logger:          logger,
	}
}

// ---------- 请求结构 ----------

type createPaymentReq struct {
	ContractID       string             `json:"contractId" binding:"required"`
	ScheduleID       *string            `json:"scheduleId"`
	ServiceType      models.ServiceType `json:"serviceType" binding:"required"`
	Amount           decimal.Decimal    `json:"amount"`
	Currency         string             `json:"currency"`
	DueDate          string             `json:"dueDate" binding:"required"`
	Status           string             `json:"status"`
	PaymentMethod    string             `json:"paymentMethod" binding:"max=32"`
	PaymentReference string             `json:"paymentReference" binding:"max=128"`
	Notes            string             `json:"notes"`
}

type updatePaymentReq struct {
	ServiceType      *models.ServiceType   `json:"serviceType"`
	Amount           *decimal.Decimal      `json:"amount"`
	Currency         *string               `json:"currency"`
	DueDate          *string               `json:"dueDate"`
	Status           *models.PaymentStatus `json:"status"`
	PaymentMethod    *string               `json:"paymentMethod"`
	PaymentReference *string               `json:"paymentReference"`
	PaymentProofURL  *string               `json:"paymentProofUrl"`
	Notes            *string               `json:"notes"`
}

type confirmPaymentReq struct {
	PaidBy           string  `json:"paidBy" binding:"required"`
	PaidDate         string  `json:"paidDate"`
	ConfirmedAt      *string `json:"confirmedAt"`
	PaymentMethod    string  `json:"paymentMethod" binding:"max=32"`
	PaymentReference string  `json:"paymentReference" binding:"max=128"`
	PaymentProofURL  string  `json:"paymentProofUrl" binding:"max=512"`
	Notes            string  `json:"notes"`
	// GenerateNext 为 true 时确认后顺带生成下一期应收
	GenerateNext bool `json:"generateNext"`
}

// CreatePayment POST /payments 手工录入一笔应收（可不关联计划）
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req createPaymentReq
	if !bindJSON(c, &req) {
		return
	}
	due, err := util.ParseDate("dueDate", req.DueDate)
	if err != nil {
		util.Fail(c, err)
		return
	}

	p := &models.Payment{
		ContractID:       req.ContractID,
		ScheduleID:       req.ScheduleID,
		ServiceType:      req.ServiceType,
		Amount:           req.Amount,
		Currency:         req.Currency,
		DueDate:          due,
		Status:           models.PaymentStatus(req.Status),
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
	}
	if p.Currency == "" {
		p.Currency = h.DefaultCurrency
	}
	if err := h.Stores.Payments.Create(c.Request.Context(), agencyID, p); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

// ListPayments GET /payments?status=&service_type= 按状态、服务类型筛选
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var (
		f   store.PaymentFilter
		err error
	)
	if f.Status, err = queryEnum(c, "status", models.PaymentStatus.Valid); err != nil {
		util.Fail(c, err)
		return
	}
	if f.ServiceType, err = queryEnum(c, "service_type", models.ServiceType.Valid); err != nil {
		util.Fail(c, err)
		return
	}
	list, err := h.Stores.Payments.ListByAgency(c.Request.Context(), agencyID, f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

// ListContractPayments GET /contracts/:id/payments?status= 合同下的应收列表
func (h *PaymentHandler) ListContractPayments(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	status, err := queryEnum(c, "status", models.PaymentStatus.Valid)
	if err != nil {
		util.Fail(c, err)
		return
	}
	list, err := h.Stores.Payments.ListByContract(c.Request.Context(), agencyID, c.Param("id"), status)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

// ListUpcoming GET /payments/upcoming?days= 未来 N 天内到期的待付款
func (h *PaymentHandler) ListUpcoming(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	days, err := queryInt(c, "days", h.UpcomingDays)
	if err != nil {
		util.Fail(c, err)
		return
	}
	list, err := h.Stores.Payments.ListUpcoming(c.Request.Context(), agencyID, days, time.Now().UTC())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list), "days": days})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	p, err := h.Stores.Payments.Get(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req updatePaymentReq
	if !bindJSON(c, &req) {
		return
	}
	due, err := optionalDate("dueDate", req.DueDate)
	if err != nil {
		util.Fail(c, err)
		return
	}
	p, err := h.Stores.Payments.Update(c.Request.Context(), agencyID, c.Param("id"), store.PaymentUpdate{
		ServiceType:      req.ServiceType,
		Amount:           req.Amount,
		Currency:         req.Currency,
		DueDate:          due,
		Status:           req.Status,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		PaymentProofURL:  req.PaymentProofURL,
		Notes:            req.Notes,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	if err := h.Stores.Payments.Delete(c.Request.Context(), agencyID, c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}

// ConfirmPayment POST /payments/:id/confirm 确认收款并写入台账
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req confirmPaymentReq
	if !bindJSON(c, &req) {
		return
	}

	paidDate := time.Now().UTC()
	if req.PaidDate != "" {
		t, err := util.ParseDate("paidDate", req.PaidDate)
		if err != nil {
			util.Fail(c, err)
			return
		}
		paidDate = t
	}
	confirmedAt, err := optionalDate("confirmedAt", req.ConfirmedAt)
	if err != nil {
		util.Fail(c, err)
		return
	}

	in := billing.Confirmation{
		PaidBy:           req.PaidBy,
		PaidDate:         paidDate,
		ConfirmedBy:      middleware.ActorID(c),
		ConfirmedAt:      confirmedAt,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		PaymentProofURL:  req.PaymentProofURL,
		Notes:            req.Notes,
	}

	ctx := c.Request.Context()
	if req.GenerateNext {
		res, err := h.Coordinator.ConfirmAndAdvance(ctx, agencyID, c.Param("id"), in)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Success(c, util.Response{
			"payment":     res.Payment,
			"transaction": res.Transaction,
			"nextPayment": res.Next,
		})
		return
	}

	p, tx, err := h.Coordinator.Confirm(ctx, agencyID, c.Param("id"), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p, "transaction": tx})
}

// GenerateNext POST /payments/:id/generate-next 手动生成下一期
func (h *PaymentHandler) GenerateNext(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	next, err := h.Generator.GenerateNext(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": next, "created": next != nil})
}

// MarkReminderSent POST /payments/:id/reminder 由通知服务回调，记录已提醒
func (h *PaymentHandler) MarkReminderSent(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	p, err := h.Stores.Payments.MarkReminderSent(c.Request.Context(), agencyID, c.Param("id"), time.Now().UTC())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

// MarkOverdue POST /payments/mark-overdue 将过期未付的应收标记为逾期
func (h *PaymentHandler) MarkOverdue(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	n, err := h.Stores.Payments.MarkOverdue(c.Request.Context(), agencyID, time.Now().UTC())
	if err != nil {
		util.Fail(c, err)
		return
	}
	if n > 0 {
		h.Logger.Info("payments marked overdue", zap.String("agency_id", agencyID), zap.Int64("count", n))
	}
	util.Success(c, util.Response{"updated": n})
}
