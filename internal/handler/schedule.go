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

// ScheduleHandler 负责收费计划相关接口
type ScheduleHandler struct {
	Stores          *store.Stores
	Generator       *billing.Generator
	DefaultCurrency string
}

func NewScheduleHandler(stores *store.Stores, gen *billing.Generator, defaultCurrency string) *ScheduleHandler {
	return &ScheduleHandler{Stores: stores, Generator: gen, DefaultCurrency: defaultCurrency}
}

// ---------- 请求结构 ----------

type createScheduleReq struct {
	ContractID  string             `json:"contractId" binding:"required"`
	ServiceType models.ServiceType `json:"serviceType" binding:"required"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	DayOfMonth  int                `json:"dayOfMonth"`
	IsActive    *bool              `json:"isActive"`
	Description string             `json:"description" binding:"max=255"`
}

type updateScheduleReq struct {
	ServiceType *models.ServiceType `json:"serviceType"`
	Amount      *decimal.Decimal    `json:"amount"`
	Currency    *string             `json:"currency"`
	DayOfMonth  *int                `json:"dayOfMonth"`
	IsActive    *bool               `json:"isActive"`
	Description *string             `json:"description"`
}

// CreateSchedule POST /schedules 新建收费计划
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req createScheduleReq
	if !bindJSON(c, &req) {
		return
	}

	sched := &models.PaymentSchedule{
		ContractID:  req.ContractID,
		ServiceType: req.ServiceType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		DayOfMonth:  req.DayOfMonth,
		IsActive:    true,
		Description: req.Description,
		CreatedBy:   middleware.ActorID(c),
	}
	if sched.Currency == "" {
		sched.Currency = h.DefaultCurrency
	}
	if req.IsActive != nil {
		sched.IsActive = *req.IsActive
	}

	if err := h.Stores.Schedules.Create(c.Request.Context(), agencyID, sched); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"schedule": sched})
}

// ListSchedules GET /schedules?active= 收费计划列表
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	active, err := queryBool(c, "active")
	if err != nil {
		util.Fail(c, err)
		return
	}
	list, err := h.Stores.Schedules.ListByAgency(c.Request.Context(), agencyID, active)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

// ListContractSchedules GET /contracts/:id/schedules 合同下的收费计划
func (h *ScheduleHandler) ListContractSchedules(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	list, err := h.Stores.Schedules.ListByContract(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": list, "total": len(list)})
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	sched, err := h.Stores.Schedules.Get(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"schedule": sched})
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	var req updateScheduleReq
	if !bindJSON(c, &req) {
		return
	}
	sched, err := h.Stores.Schedules.Update(c.Request.Context(), agencyID, c.Param("id"), store.ScheduleUpdate{
		ServiceType: req.ServiceType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		DayOfMonth:  req.DayOfMonth,
		IsActive:    req.IsActive,
		Description: req.Description,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"schedule": sched})
}

// ToggleSchedule POST /schedules/:id/toggle 启用/停用
func (h *ScheduleHandler) ToggleSchedule(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	sched, err := h.Stores.Schedules.ToggleActive(c.Request.Context(), agencyID, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"schedule": sched})
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	if err := h.Stores.Schedules.Delete(c.Request.Context(), agencyID, c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}

// GenerateFirst POST /schedules/:id/generate 生成计划的第一笔应收
func (h *ScheduleHandler) GenerateFirst(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}
	p, err := h.Generator.GenerateFirst(c.Request.Context(), agencyID, c.Param("id"), time.Now().UTC())
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"payment": p, "created": p != nil})
}
