package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/provider"
	"github.com/TanvirSEF/tracking-be/internal/queue"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerifyCodeEmail, c.handleVerifyCodeEmail)
	mux.HandleFunc(queue.TaskRequestDecisionEmail, c.handleRequestDecisionEmail)
}

func (c *Consumer) handleVerifyCodeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_verify_code_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VerifyCodeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_verify_code_email_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || strings.TrimSpace(payload.Code) == "" {
		logger.Debugw("worker_verify_code_email_skip_invalid_payload", "email", email)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_verify_code_email_skip_email_service_nil", "email", email)
		return nil
	}
	if err := c.EmailService.SendVerifyCode(email, payload.Code, payload.Purpose); err != nil {
		logger.Warnw("worker_verify_code_email_send_failed",
			"email", email,
			"purpose", payload.Purpose,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleRequestDecisionEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_request_decision_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RequestDecisionEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_request_decision_email_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" {
		logger.Debugw("worker_request_decision_email_skip_empty_receiver")
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_request_decision_email_skip_email_service_nil", "email", email)
		return nil
	}
	input := service.RequestDecisionEmailInput{
		Name:       payload.Name,
		Approved:   payload.Approved,
		Reason:     payload.Reason,
		UniqueLink: payload.UniqueLink,
		BaseURL:    c.Config.Affiliate.BaseURL,
	}
	if err := c.EmailService.SendRequestDecisionEmail(email, input); err != nil {
		logger.Warnw("worker_request_decision_email_send_failed",
			"email", email,
			"approved", payload.Approved,
			"error", err,
		)
		return err
	}
	return nil
}
