package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/middleware"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// currentAgency 读取鉴权中间件写入的 agency；缺失时直接返回 401
func currentAgency(c *gin.Context) (string, bool) {
	agencyID := middleware.AgencyID(c)
	if agencyID == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "missing agency")
		return "", false
	}
	return agencyID, true
}

// bindJSON 绑定请求体，失败时直接返回 400
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Validation(key, "must be an integer, got %q", s)
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.Validation(key, "must be true or false, got %q", s)
	}
	return &b, nil
}

// queryEnum 解析枚举类查询参数，未知取值返回 400
func queryEnum[T ~string](c *gin.Context, key string, valid func(T) bool) (*T, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	v := T(s)
	if !valid(v) {
		return nil, apperr.Validation(key, "unknown value %q", s)
	}
	return &v, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	t, err := util.ParseDate(key, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalDate 解析请求体里可选的日期字符串
func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := util.ParseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
