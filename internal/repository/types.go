package repository

// AffiliateRequestListFilter 查询入驻申请列表的过滤条件
type AffiliateRequestListFilter struct {
	Page     int
	PageSize int
	Status   string
	Keyword  string
}

// AffiliateListFilter 查询推广档案列表的过滤条件
type AffiliateListFilter struct {
	Page     int
	PageSize int
	Status   string
	Keyword  string
}

// ReferralListFilter 查询引荐记录列表的过滤条件
type ReferralListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	Keyword     string
}

// TicketListFilter 查询工单列表的过滤条件
type TicketListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	Status      string
	Priority    string
	Keyword     string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	Status   string
}
