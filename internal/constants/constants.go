package constants

// 用户角色常量
const (
	UserRoleAdmin     = "admin"
	UserRoleAffiliate = "affiliate"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 申请状态常量
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// 拒绝默认原因
const (
	RequestRejectReasonDefault = "No reason provided"
)

// 推广档案状态常量
const (
	AffiliateStatusActive   = "active"
	AffiliateStatusDisabled = "disabled"
)

// 工单状态常量
const (
	TicketStatusOpen    = "open"
	TicketStatusOngoing = "ongoing"
	TicketStatusClosed  = "closed"
)

// 工单优先级常量
const (
	TicketPriorityAverage = "average"
	TicketPriorityMedium  = "medium"
	TicketPriorityHigh    = "high"
)

// 工单回复发送方常量
const (
	TicketSenderAdmin     = "admin"
	TicketSenderAffiliate = "affiliate"
)

// 验证码用途常量
const (
	VerifyPurposeRegister = "register"
	VerifyPurposeReset    = "reset"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin            = "login"
	CaptchaSceneRegisterSendCode = "register_send_code"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskVerifyCodeEmail      = "email:verify_code"
	TaskRequestDecisionEmail = "email:request_decision"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tk"
)
