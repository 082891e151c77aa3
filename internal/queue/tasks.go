package queue

import (
	"encoding/json"

	"github.com/TanvirSEF/tracking-be/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerifyCodeEmail 验证码邮件任务
	TaskVerifyCodeEmail = constants.TaskVerifyCodeEmail
	// TaskRequestDecisionEmail 申请审批结果邮件任务
	TaskRequestDecisionEmail = constants.TaskRequestDecisionEmail
)

// VerifyCodeEmailPayload 验证码邮件任务载荷
type VerifyCodeEmailPayload struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// RequestDecisionEmailPayload 审批结果邮件任务载荷
type RequestDecisionEmailPayload struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Approved   bool   `json:"approved"`
	Reason     string `json:"reason"`
	UniqueLink string `json:"unique_link"`
}

// NewVerifyCodeEmailTask 创建验证码邮件任务
func NewVerifyCodeEmailTask(payload VerifyCodeEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyCodeEmail, body), nil
}

// NewRequestDecisionEmailTask 创建审批结果邮件任务
func NewRequestDecisionEmailTask(payload RequestDecisionEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRequestDecisionEmail, body), nil
}
