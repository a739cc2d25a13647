package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestID    = "requestID"

	maxAuditBody = 2000
)

// RequestLogger 用 zap 结构化日志替代 gin.Logger，并为每个请求打上 request id
// （调用方带了 X-Request-ID 时沿用）。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(CtxRequestID, reqID)
		c.Header(HeaderRequestID, reqID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if agency := c.GetString(CtxAgencyID); agency != "" {
			fields = append(fields, zap.String("agency_id", agency))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// AuditMiddleware 记录 agency 的写操作；path 和 body 只保存密文。
func AuditMiddleware(db *gorm.DB, encryptKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		agencyID := c.GetString(CtxAgencyID)
		if agencyID == "" {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			action += " " + string(bodyBytes)
		}

		encPath, err := util.EncryptString(encryptKey, path)
		if err != nil {
			logger.Warn("audit encrypt failed", zap.Error(err))
			return
		}
		encAction, err := util.EncryptString(encryptKey, action)
		if err != nil {
			logger.Warn("audit encrypt failed", zap.Error(err))
			return
		}

		entry := models.AuditLog{
			AgencyID:  agencyID,
			ActorID:   c.GetString(CtxActorID),
			RequestID: c.GetString(CtxRequestID),
			Method:    c.Request.Method,
			PathEnc:   encPath,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			logger.Warn("write audit log failed",
				zap.String("agency_id", agencyID),
				zap.Error(err))
		}
	}
}
