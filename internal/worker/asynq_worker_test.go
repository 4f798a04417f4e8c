package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/rajabpour4097/faydo/internal/provider"
	"github.com/rajabpour4097/faydo/internal/queue"

	"github.com/hibiken/asynq"
)

type recordingSender struct {
	to   string
	text string
}

func (s *recordingSender) Send(_ context.Context, to, text string) error {
	s.to = to
	s.text = text
	return nil
}

func TestHandleOTPSMSDeliverSendsCode(t *testing.T) {
	sender := &recordingSender{}
	consumer := NewConsumer(&provider.Container{SMSSender: sender})

	task, err := queue.NewOTPSMSDeliverTask(queue.OTPSMSDeliverPayload{
		Phone:   "09123456789",
		Code:    "48213",
		Purpose: "login",
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := consumer.handleOTPSMSDeliver(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
	if sender.to != "09123456789" {
		t.Fatalf("unexpected recipient %q", sender.to)
	}
	if !strings.Contains(sender.text, "48213") {
		t.Fatalf("sms text %q does not contain code", sender.text)
	}
}

func TestHandleOTPSMSDeliverSkipsEmptyPayload(t *testing.T) {
	sender := &recordingSender{}
	consumer := NewConsumer(&provider.Container{SMSSender: sender})

	task, err := queue.NewOTPSMSDeliverTask(queue.OTPSMSDeliverPayload{Phone: "", Code: ""})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := consumer.handleOTPSMSDeliver(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
	if sender.to != "" {
		t.Fatalf("expected no sms delivery, got recipient %q", sender.to)
	}
}

func TestHandlePackageExpireSkipsMissingBusiness(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewPackageExpireTask(queue.PackageExpirePayload{PackageID: 7})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := consumer.handlePackageExpire(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
}

func TestHandlePackageExpireBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskPackageExpire, []byte("{"))

	if err := consumer.handlePackageExpire(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
