package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTicketServiceTest(t *testing.T) (*TicketService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ticket_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Affiliate{}, &models.Ticket{}, &models.TicketReply{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	svc := NewTicketService(
		repository.NewTicketRepository(db),
		repository.NewAffiliateRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func createAdminForTest(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	admin := &models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "管理员",
		Role:         constants.UserRoleAdmin,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketcreate001xxxx", constants.AffiliateStatusActive)

	ticket, err := svc.Create(affiliate.UserID, CreateTicketInput{
		Subject: "  结算问题  ",
		Message: "  上月佣金未到账  ",
	})
	if err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}
	if ticket.AffiliateID != affiliate.ID {
		t.Fatalf("ticket bound to wrong affiliate: %d", ticket.AffiliateID)
	}
	if ticket.Subject != "结算问题" || ticket.Message != "上月佣金未到账" {
		t.Fatalf("fields not trimmed: %+v", ticket)
	}
	if ticket.Status != constants.TicketStatusOpen {
		t.Fatalf("initial status want open got %s", ticket.Status)
	}
	if ticket.Priority != constants.TicketPriorityAverage {
		t.Fatalf("default priority want average got %s", ticket.Priority)
	}
}

func TestCreateTicketRejectsInvalidInput(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketbad000001xxxx", constants.AffiliateStatusActive)

	if _, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "   ", Message: "内容"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank subject: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "标题", Message: "内容", Priority: "urgent"}); !errors.Is(err, ErrInvalidTicketPriority) {
		t.Fatalf("unknown priority: expected ErrInvalidTicketPriority, got %v", err)
	}
	if _, err := svc.Create(affiliate.UserID+1000, CreateTicketInput{Subject: "标题", Message: "内容"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no profile: expected ErrNotFound, got %v", err)
	}
}

func TestTicketOwnershipIsolation(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	mine := createAffiliateForTest(t, db, "ticketmine00001xxxx", constants.AffiliateStatusActive)
	other := createAffiliateForTest(t, db, "ticketother0001xxxx", constants.AffiliateStatusActive)

	ticket, err := svc.Create(mine.UserID, CreateTicketInput{Subject: "只有我能看", Message: "内容"})
	if err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}

	if _, err := svc.GetForUser(other.UserID, ticket.ID); !errors.Is(err, ErrTicketAccessDenied) {
		t.Fatalf("expected ErrTicketAccessDenied, got %v", err)
	}
	if _, err := svc.ReplyForUser(other.UserID, ticket.ID, "插话"); !errors.Is(err, ErrTicketAccessDenied) {
		t.Fatalf("reply: expected ErrTicketAccessDenied, got %v", err)
	}

	got, err := svc.GetForUser(mine.UserID, ticket.ID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.ID != ticket.ID {
		t.Fatalf("got wrong ticket: %d", got.ID)
	}
}

func TestAdminReplyMovesOpenToOngoing(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketreply0001xxxx", constants.AffiliateStatusActive)
	admin := createAdminForTest(t, db, "ticket-admin@example.com")

	ticket, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "链接失效", Message: "推广链接打不开"})
	if err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}

	reply, err := svc.ReplyForAdmin(ticket.ID, admin.ID, "已收到，正在排查")
	if err != nil {
		t.Fatalf("admin reply failed: %v", err)
	}
	if reply.SenderRole != constants.TicketSenderAdmin {
		t.Fatalf("sender role want admin got %s", reply.SenderRole)
	}
	if reply.SenderName != admin.Name {
		t.Fatalf("sender name want %q got %q", admin.Name, reply.SenderName)
	}

	updated, err := svc.GetForAdmin(ticket.ID)
	if err != nil {
		t.Fatalf("get ticket failed: %v", err)
	}
	if updated.Status != constants.TicketStatusOngoing {
		t.Fatalf("status want ongoing got %s", updated.Status)
	}
	if updated.LastReplyAt == nil {
		t.Fatalf("last_reply_at not set")
	}
	if len(updated.Replies) != 1 {
		t.Fatalf("replies want 1 got %d", len(updated.Replies))
	}

	// 推广用户追问不回退状态
	if _, err := svc.ReplyForUser(affiliate.UserID, ticket.ID, "好的，多谢"); err != nil {
		t.Fatalf("user reply failed: %v", err)
	}
	updated, err = svc.GetForAdmin(ticket.ID)
	if err != nil {
		t.Fatalf("get ticket failed: %v", err)
	}
	if updated.Status != constants.TicketStatusOngoing {
		t.Fatalf("status should stay ongoing, got %s", updated.Status)
	}
	if len(updated.Replies) != 2 {
		t.Fatalf("replies want 2 got %d", len(updated.Replies))
	}
}

func TestClosedTicketRejectsReplies(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketclosed001xxxx", constants.AffiliateStatusActive)
	admin := createAdminForTest(t, db, "ticket-closer@example.com")

	ticket, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "已解决", Message: "可以关单"})
	if err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}
	if _, err := svc.Update(ticket.ID, UpdateTicketInput{Status: constants.TicketStatusClosed}); err != nil {
		t.Fatalf("close ticket failed: %v", err)
	}

	if _, err := svc.ReplyForUser(affiliate.UserID, ticket.ID, "再补一句"); !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("user reply: expected ErrTicketClosed, got %v", err)
	}
	if _, err := svc.ReplyForAdmin(ticket.ID, admin.ID, "再补一句"); !errors.Is(err, ErrTicketClosed) {
		t.Fatalf("admin reply: expected ErrTicketClosed, got %v", err)
	}
}

func TestUpdateTicketValidatesFields(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketupdate001xxxx", constants.AffiliateStatusActive)

	ticket, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "优先级调整", Message: "比较急"})
	if err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}

	if _, err := svc.Update(ticket.ID, UpdateTicketInput{Status: "resolved"}); !errors.Is(err, ErrInvalidTicketStatus) {
		t.Fatalf("expected ErrInvalidTicketStatus, got %v", err)
	}
	if _, err := svc.Update(ticket.ID, UpdateTicketInput{Priority: "urgent"}); !errors.Is(err, ErrInvalidTicketPriority) {
		t.Fatalf("expected ErrInvalidTicketPriority, got %v", err)
	}
	if _, err := svc.Update(ticket.ID+1000, UpdateTicketInput{Status: constants.TicketStatusClosed}); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}

	updated, err := svc.Update(ticket.ID, UpdateTicketInput{Priority: constants.TicketPriorityHigh})
	if err != nil {
		t.Fatalf("update priority failed: %v", err)
	}
	if updated.Priority != constants.TicketPriorityHigh {
		t.Fatalf("priority want high got %s", updated.Priority)
	}
	if updated.Status != constants.TicketStatusOpen {
		t.Fatalf("status should be untouched, got %s", updated.Status)
	}
}

func TestListTicketsFilters(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketlist00001xxxx", constants.AffiliateStatusActive)

	first, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "佣金问题", Message: "结算延迟", Priority: constants.TicketPriorityHigh})
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if _, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "素材申请", Message: "要新的落地页"}); err != nil {
		t.Fatalf("create second failed: %v", err)
	}
	if _, err := svc.Update(first.ID, UpdateTicketInput{Status: constants.TicketStatusClosed}); err != nil {
		t.Fatalf("close first failed: %v", err)
	}

	rows, total, err := svc.List(repository.TicketListFilter{Page: 1, PageSize: 20, Status: constants.TicketStatusOpen})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Subject != "素材申请" {
		t.Fatalf("status filter wrong: total=%d rows=%+v", total, rows)
	}

	rows, total, err = svc.List(repository.TicketListFilter{Page: 1, PageSize: 20, Priority: constants.TicketPriorityHigh})
	if err != nil {
		t.Fatalf("list by priority failed: %v", err)
	}
	if total != 1 || rows[0].ID != first.ID {
		t.Fatalf("priority filter wrong: total=%d", total)
	}

	if _, _, err := svc.List(repository.TicketListFilter{Status: "resolved"}); !errors.Is(err, ErrInvalidTicketStatus) {
		t.Fatalf("expected ErrInvalidTicketStatus, got %v", err)
	}
}

func TestListForUserFiltersByStatus(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	mine := createAffiliateForTest(t, db, "ticketmystat001xxxx", constants.AffiliateStatusActive)
	other := createAffiliateForTest(t, db, "ticketostat0001xxxx", constants.AffiliateStatusActive)

	open, err := svc.Create(mine.UserID, CreateTicketInput{Subject: "我的工单", Message: "内容"})
	if err != nil {
		t.Fatalf("create mine failed: %v", err)
	}
	closed, err := svc.Create(mine.UserID, CreateTicketInput{Subject: "我的旧工单", Message: "内容"})
	if err != nil {
		t.Fatalf("create mine closed failed: %v", err)
	}
	if _, err := svc.Update(closed.ID, UpdateTicketInput{Status: constants.TicketStatusClosed}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := svc.Create(other.UserID, CreateTicketInput{Subject: "别人的工单", Message: "内容"}); err != nil {
		t.Fatalf("create other failed: %v", err)
	}

	rows, total, err := svc.ListForUser(mine.UserID, 1, 20, constants.TicketStatusOpen)
	if err != nil {
		t.Fatalf("list for user failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != open.ID {
		t.Fatalf("own open tickets want 1, got total=%d", total)
	}

	rows, total, err = svc.ListForUser(mine.UserID, 1, 20, "")
	if err != nil {
		t.Fatalf("list all for user failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("own tickets want 2 got %d", total)
	}
	for _, row := range rows {
		if row.AffiliateID != mine.ID {
			t.Fatalf("leaked another affiliate's ticket: %+v", row)
		}
	}
}

func TestTicketStats(t *testing.T) {
	svc, db := setupTicketServiceTest(t)
	affiliate := createAffiliateForTest(t, db, "ticketstats0001xxxx", constants.AffiliateStatusActive)
	admin := createAdminForTest(t, db, "ticket-stats@example.com")

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: fmt.Sprintf("工单%d", i), Message: "内容"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	ongoing, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "处理中", Message: "内容"})
	if err != nil {
		t.Fatalf("create ongoing failed: %v", err)
	}
	if _, err := svc.ReplyForAdmin(ongoing.ID, admin.ID, "看一下"); err != nil {
		t.Fatalf("admin reply failed: %v", err)
	}
	done, err := svc.Create(affiliate.UserID, CreateTicketInput{Subject: "已关闭", Message: "内容"})
	if err != nil {
		t.Fatalf("create closed failed: %v", err)
	}
	if _, err := svc.Update(done.ID, UpdateTicketInput{Status: constants.TicketStatusClosed}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 4 || stats.Open != 2 || stats.Ongoing != 1 || stats.Closed != 1 {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}
