package cache

import (
	"context"
	"fmt"
	"time"
)

// OTPState 短信验证码状态
// 仅存于 Redis，按手机号 + 用途隔离；attempt_count 用于限制重试次数。
type OTPState struct {
	Phone        string `json:"phone"`
	Purpose      string `json:"purpose"`
	Code         string `json:"code"`
	AttemptCount int    `json:"attempt_count"`
	SentAt       int64  `json:"sent_at"`
}

func otpStateKey(phone, purpose string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, phone)
}

// GetOTPState 获取验证码状态
func GetOTPState(ctx context.Context, phone, purpose string) (*OTPState, bool, error) {
	if phone == "" {
		return nil, false, nil
	}
	var state OTPState
	hit, err := GetJSON(ctx, otpStateKey(phone, purpose), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetOTPState 写入验证码状态（TTL 即验证码有效期）
func SetOTPState(ctx context.Context, state *OTPState, ttl time.Duration) error {
	if state == nil || state.Phone == "" {
		return nil
	}
	return SetJSON(ctx, otpStateKey(state.Phone, state.Purpose), state, ttl)
}

// DelOTPState 删除验证码状态（验证成功或尝试超限后调用）
func DelOTPState(ctx context.Context, phone, purpose string) error {
	if phone == "" {
		return nil
	}
	return Del(ctx, otpStateKey(phone, purpose))
}

// IncrOTPAttempt 验证失败时累加尝试次数，保留原 TTL
func IncrOTPAttempt(ctx context.Context, state *OTPState, ttl time.Duration) error {
	if state == nil {
		return nil
	}
	state.AttemptCount++
	return SetJSON(ctx, otpStateKey(state.Phone, state.Purpose), state, ttl)
}
