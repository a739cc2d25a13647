package util

import (
	"testing"
	"time"
)

func TestGenerateParseToken(t *testing.T) {
	tok, err := GenerateToken("secret", "billing", "agency-1", "agent-7", "admin", time.Hour)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	claims, err := ParseToken("secret", tok)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.AgencyID != "agency-1" || claims.ActorID != "agent-7" || claims.Issuer != "billing" {
		t.Errorf("claims 不匹配: %+v", claims)
	}

	if _, err := ParseToken("other-secret", tok); err == nil {
		t.Error("错误密钥应解析失败")
	}
}

func TestGenerateTokenDefaultTTL(t *testing.T) {
	tok, err := GenerateToken("secret", "billing", "agency-1", "agent-7", "", -time.Minute)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	// ttl <= 0 falls back to the default lifetime
	if _, err := ParseToken("secret", tok); err != nil {
		t.Errorf("默认有效期内应通过: %v", err)
	}
}

func TestGenerateTokenRequiresAgency(t *testing.T) {
	if _, err := GenerateToken("secret", "billing", "", "agent-7", "", time.Hour); err == nil {
		t.Error("缺少 agency 应返回错误")
	}
}
