package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责审计日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

// decryptField 尝试解密，失败则返回原值
func (h *LogHandler) decryptField(cipherStr string) string {
	plain, err := util.DecryptString(h.EncryptKey, cipherStr)
	if err != nil {
		return cipherStr
	}
	return plain
}

type logResp struct {
	ID        uint      `json:"id"`
	RequestID string    `json:"requestId"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListLogs GET /audit-logs 当前 agency 的操作日志（分页 + 时间 + 关键字）
// path 和 action 只有密文，关键字在解密后的当前页内过滤。
func (h *LogHandler) ListLogs(c *gin.Context) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		util.Fail(c, err)
		return
	}
	size, err := queryInt(c, "page_size", store.DefaultPageSize)
	if err != nil {
		util.Fail(c, err)
		return
	}

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	start, err := queryDate(c, "start")
	if err != nil {
		util.Fail(c, err)
		return
	}
	end, err := queryDate(c, "end")
	if err != nil {
		util.Fail(c, err)
		return
	}

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{}).Where("agency_id = ?", agencyID)
	if start != nil {
		base = base.Where("created_at >= ?", *start)
	}
	if end != nil {
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}
	if actor := c.Query("actor_id"); actor != "" {
		base = base.Where("actor_id = ?", actor)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Scopes(store.Paginate(page, size)).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		path := h.decryptField(l.PathEnc)
		action := h.decryptField(l.ActionEnc)
		if q != "" && !strings.Contains(strings.ToLower(action), q) {
			continue
		}
		items = append(items, logResp{
			ID:        l.ID,
			RequestID: l.RequestID,
			ActorID:   l.ActorID,
			Action:    action,
			Path:      path,
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
