package util

import (
	"regexp"
	"strings"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"

	"github.com/shopspring/decimal"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// maxAmount 单笔应收或台账金额的上限
var maxAmount = decimal.NewFromInt(1_000_000_000)

// ValidateAmount 验证金额（不能为负数且不超过上限）
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Validation(field, "must not be negative, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return apperr.Validation(field, "too large, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.Validation(field, "at most two decimal places, got %s", amount)
	}
	return nil
}

// ValidateDayOfMonth 验证账单日（1-31）
func ValidateDayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return apperr.Validation("dayOfMonth", "must be between 1 and 31, got %d", day)
	}
	return nil
}

// ValidateCurrency 验证币种（ISO 4217 三位大写字母）
func ValidateCurrency(currency string) error {
	if !currencyRe.MatchString(currency) {
		return apperr.Validation("currency", "must be a 3-letter ISO code, got %q", currency)
	}
	return nil
}

// ValidateRequired 必填校验，空白字符串视为缺失
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field, "is required")
	}
	return nil
}

// ParseDate 解析日期（必须为 YYYY-MM-DD 或 RFC3339）
func ParseDate(field, dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, apperr.Validation(field, "date is empty")
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation(field, "invalid date %q, want YYYY-MM-DD", dateStr)
}
