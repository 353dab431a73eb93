package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/okrhub/okrhub/backend/internal/models"
	"github.com/okrhub/okrhub/backend/pkg/logger"
	"gorm.io/gorm"
)

// Notification action decisions.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

type NotificationService struct {
	db    *gorm.DB
	authz *AuthzService
	queue TaskQueue
}

// NewNotificationService creates the workflow engine. queue may be nil;
// INFO fan-out is then skipped.
func NewNotificationService(db *gorm.DB, queue TaskQueue) *NotificationService {
	return &NotificationService{db: db, authz: NewAuthzService(db), queue: queue}
}

type CreateNotificationRequest struct {
	SenderID   string  `json:"sender_id"` // filled from the authenticated caller
	ReceiverID string  `json:"receiver_id" binding:"required"`
	OID        uint    `json:"oid" binding:"required"`
	TID        string  `json:"tid" binding:"required"`
	Role       *string `json:"role"`
	Body       string  `json:"body"`
	Type       string  `json:"type" binding:"required"`
}

// Create validates all references and inserts a PENDING notification.
// Direction is fixed here: for REQ_TO_JOIN the receiver is the approving
// manager, for REQ_TO_ADD the receiver is the invitee.
func (s *NotificationService) Create(req *CreateNotificationRequest) (*models.Notification, error) {
	if !models.ValidNotificationType(req.Type) {
		return nil, ErrValidation("unknown notification type: " + req.Type)
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		return nil, ErrValidation("unknown role: " + *req.Role)
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).
		Where("uid IN ?", []string{req.SenderID, req.ReceiverID}).
		Count(&count).Error; err != nil {
		return nil, err
	}
	wanted := int64(2)
	if req.SenderID == req.ReceiverID {
		wanted = 1
	}
	if count != wanted {
		return nil, ErrValidation("sender or receiver has no profile")
	}

	var team models.Team
	if err := s.db.First(&team, "tid = ?", req.TID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrValidation("team not found")
		}
		return nil, err
	}
	if team.OID != req.OID {
		return nil, ErrValidation("team does not belong to that organization")
	}

	n := models.Notification{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		OID:        req.OID,
		TID:        req.TID,
		Role:       req.Role,
		Body:       req.Body,
		Status:     models.NotificationPending,
		Type:       req.Type,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

type ActionResult struct {
	Notification *models.Notification `json:"notification"`
	Membership   *models.Membership   `json:"membership,omitempty"`
}

// HandleAction drives the PENDING → ACCEPTED | DECLINED transition.
// Accepting a membership request creates the implied membership in the
// same transaction as the status flip; if either write fails, neither
// happens.
func (s *NotificationService) HandleAction(nid uint, actingUID, decision string) (*ActionResult, error) {
	if decision != DecisionAccept && decision != DecisionDecline {
		return nil, ErrValidation("decision must be accept or decline")
	}

	var n models.Notification
	if err := s.db.First(&n, nid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("notification not found")
		}
		return nil, err
	}

	if !s.authz.CanActOnNotification(actingUID, &n) {
		return nil, ErrNotAuthorized("only the receiver can act on this notification")
	}
	if n.Status != models.NotificationPending {
		return nil, ErrInvalidState("notification is not pending")
	}
	if n.Type == models.NotificationInfo {
		return nil, ErrInvalidState("informational notifications cannot be accepted or declined")
	}

	// The referenced org/team pairing must still exist, whichever way the
	// receiver decides. A dangling reference leaves the notification
	// visible but non-actionable.
	var team models.Team
	if err := s.db.First(&team, "tid = ?", n.TID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidState("referenced team no longer exists")
		}
		return nil, err
	}
	var orgCount int64
	if err := s.db.Model(&models.Organization{}).Where("oid = ?", n.OID).Count(&orgCount).Error; err != nil {
		return nil, err
	}
	if team.OID != n.OID || orgCount == 0 {
		return nil, ErrInvalidState("referenced organization no longer exists")
	}

	if decision == DecisionDecline {
		updated, err := s.transition(s.db, &n, models.NotificationDeclined)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Notification: updated}, nil
	}

	role := models.RoleMember
	if n.Role != nil {
		role = *n.Role
	}

	result := &ActionResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		membership := models.Membership{
			UID:  s.membershipTarget(&n),
			OID:  n.OID,
			TID:  n.TID,
			Role: role,
		}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict("already a member of that team")
			}
			return err
		}
		result.Membership = &membership

		updated, err := s.transition(tx, &n, models.NotificationAccepted)
		if err != nil {
			return err
		}
		result.Notification = updated
		return nil
	})
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, ErrTransaction("notification accept failed", err)
	}

	s.dispatchMembershipInfo(&n, result.Membership)
	return result, nil
}

// transition flips status with a guard on the current PENDING state, so a
// concurrent action on the same notification loses cleanly.
func (s *NotificationService) transition(tx *gorm.DB, n *models.Notification, to string) (*models.Notification, error) {
	res := tx.Model(&models.Notification{}).
		Where("nid = ? AND status = ?", n.NID, models.NotificationPending).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState("notification is not pending")
	}
	updated := *n
	updated.Status = to
	return &updated, nil
}

// membershipTarget resolves which profile the accepted membership is for.
// REQ_TO_JOIN: the sender asked to join and the manager accepts.
// REQ_TO_ADD: the manager invited the receiver, who accepts.
func (s *NotificationService) membershipTarget(n *models.Notification) string {
	if n.Type == models.NotificationReqToJoin {
		return n.SenderID
	}
	return n.ReceiverID
}

// dispatchMembershipInfo tells the sender their request went through. The
// receiver is always the acting party, so the counterpart to inform is the
// sender for both request types. Best effort; the accept has already
// committed.
func (s *NotificationService) dispatchMembershipInfo(n *models.Notification, m *models.Membership) {
	if s.queue == nil {
		return
	}
	body := "Your invitation was accepted."
	if n.Type == models.NotificationReqToJoin {
		body = fmt.Sprintf("Your request to join was accepted with role %s.", m.Role)
	}
	task := &DispatchTask{
		SenderID:   n.ReceiverID,
		ReceiverID: n.SenderID,
		OID:        n.OID,
		TID:        n.TID,
		Body:       body,
	}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warn().Err(err).Uint("nid", n.NID).Msg("failed to enqueue info notification")
	}
}

// Delete removes a notification. Settled notifications may be deleted by
// either party; a PENDING one only by its sender (retraction).
func (s *NotificationService) Delete(nid uint, actingUID string) error {
	var n models.Notification
	if err := s.db.First(&n, nid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("notification not found")
		}
		return err
	}

	if actingUID != n.SenderID && actingUID != n.ReceiverID {
		return ErrNotAuthorized("not a party to this notification")
	}
	if n.Status == models.NotificationPending && actingUID != n.SenderID {
		return ErrNotAuthorized("a pending notification can only be retracted by its sender")
	}

	return s.db.Delete(&n).Error
}

type NotificationListRequest struct {
	Box      string `form:"box"` // inbox (default) or sent
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

// ListForUser returns uid's notifications, newest first.
func (s *NotificationService) ListForUser(uid string, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{})
	if req.Box == "sent" {
		query = query.Where("sender_id = ?", uid)
	} else {
		query = query.Where("receiver_id = ?", uid)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("date_created DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// ProcessDispatchTask writes the INFO notification a dispatch task
// describes. Runs on the worker (async mode) or inline (sync mode).
func (s *NotificationService) ProcessDispatchTask(ctx context.Context, task *DispatchTask) error {
	n := models.Notification{
		SenderID:   task.SenderID,
		ReceiverID: task.ReceiverID,
		OID:        task.OID,
		TID:        task.TID,
		Body:       task.Body,
		Status:     models.NotificationPending,
		Type:       models.NotificationInfo,
	}
	return s.db.WithContext(ctx).Create(&n).Error
}
