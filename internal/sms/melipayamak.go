package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rajabpour4097/faydo/internal/config"
	"github.com/rajabpour4097/faydo/internal/logger"
)

// Sender 短信发送接口
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// MelipayamakClient 国内版 Melipayamak REST 客户端
type MelipayamakClient struct {
	username string
	password string
	from     string
	baseURL  string
	client   *http.Client
}

// NewMelipayamakClient 创建短信客户端
func NewMelipayamakClient(cfg config.SMSConfig) *MelipayamakClient {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://rest.payamak-panel.com/api/SendSMS"
	}
	return &MelipayamakClient{
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		baseURL:  base,
		client:   &http.Client{Timeout: timeout},
	}
}

type melipayamakResponse struct {
	Value        string `json:"Value"`
	RetStatus    int    `json:"RetStatus"`
	StrRetStatus string `json:"StrRetStatus"`
}

// Send 发送一条短信
func (c *MelipayamakClient) Send(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("to", to)
	form.Set("from", c.from)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/SendSMS", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}
	var body melipayamakResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.RetStatus != 1 {
		logger.Warnw("sms_send_rejected", "to", to, "ret_status", body.RetStatus, "detail", body.StrRetStatus)
		return errors.New("sms provider rejected message")
	}
	logger.Infow("sms_sent", "to", to)
	return nil
}

// NoopSender 测试与短信关闭场景下的空实现
type NoopSender struct{}

// Send 仅记录日志，不实际发送
func (NoopSender) Send(_ context.Context, to, _ string) error {
	logger.Debugw("sms_send_skipped", "to", to)
	return nil
}
