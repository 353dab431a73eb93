package services

import (
	"context"
	"testing"

	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// notificationFixture seeds two profiles, an org with a team, and returns
// the pieces most tests need.
type notificationFixture struct {
	db   *gorm.DB
	svc  *NotificationService
	org  *models.Organization
	team *models.Team
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	db := newTestDB(t)
	seedProfile(t, db, "manager")
	seedProfile(t, db, "applicant")
	org := seedOrg(t, db, "manager", "Acme")
	team := seedTeam(t, db, org.OID, "Platform")
	return &notificationFixture{
		db:   db,
		svc:  NewNotificationService(db, nil),
		org:  org,
		team: team,
	}
}

func (f *notificationFixture) joinRequest(t *testing.T) *models.Notification {
	t.Helper()
	n, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "applicant",
		ReceiverID: "manager",
		OID:        f.org.OID,
		TID:        f.team.TID,
		Role:       strPtr(models.RoleMember),
		Body:       "I'd like to join Platform",
		Type:       models.NotificationReqToJoin,
	})
	if err != nil {
		t.Fatalf("failed to create join request: %v", err)
	}
	return n
}

func TestCreateNotification_StartsPending(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	if n.Status != models.NotificationPending {
		t.Errorf("status = %q, expected PENDING", n.Status)
	}
}

func TestCreateNotification_RejectsUnknownType(t *testing.T) {
	f := newNotificationFixture(t)

	_, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "applicant",
		ReceiverID: "manager",
		OID:        f.org.OID,
		TID:        f.team.TID,
		Type:       "NUDGE",
	})
	if KindOf(err) != KindValidation {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestCreateNotification_RejectsMissingProfile(t *testing.T) {
	f := newNotificationFixture(t)

	_, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "ghost",
		ReceiverID: "manager",
		OID:        f.org.OID,
		TID:        f.team.TID,
		Type:       models.NotificationReqToJoin,
	})
	if KindOf(err) != KindValidation {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestCreateNotification_TeamMustBelongToOrg(t *testing.T) {
	f := newNotificationFixture(t)
	other := seedOrg(t, f.db, "manager", "Globex")

	_, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "applicant",
		ReceiverID: "manager",
		OID:        other.OID,
		TID:        f.team.TID,
		Type:       models.NotificationReqToJoin,
	})
	if KindOf(err) != KindValidation {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestHandleAction_AcceptCreatesMembership(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	result, err := f.svc.HandleAction(n.NID, "manager", DecisionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if result.Notification.Status != models.NotificationAccepted {
		t.Errorf("status = %q, expected ACCEPTED", result.Notification.Status)
	}
	if result.Membership == nil {
		t.Fatal("accept should create a membership")
	}
	// REQ_TO_JOIN: the sender is who joins
	if result.Membership.UID != "applicant" {
		t.Errorf("membership uid = %q, expected applicant", result.Membership.UID)
	}
	if result.Membership.Role != models.RoleMember {
		t.Errorf("membership role = %q, expected %q", result.Membership.Role, models.RoleMember)
	}
}

func TestHandleAction_SecondActionIsInvalidState(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	if _, err := f.svc.HandleAction(n.NID, "manager", DecisionAccept); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	_, err := f.svc.HandleAction(n.NID, "manager", DecisionAccept)
	if KindOf(err) != KindInvalidState {
		t.Errorf("expected InvalidState on second accept, got %v", err)
	}

	_, err = f.svc.HandleAction(n.NID, "manager", DecisionDecline)
	if KindOf(err) != KindInvalidState {
		t.Errorf("expected InvalidState on decline after accept, got %v", err)
	}
}

func TestHandleAction_DeclineIsPermanent(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	result, err := f.svc.HandleAction(n.NID, "manager", DecisionDecline)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if result.Notification.Status != models.NotificationDeclined {
		t.Errorf("status = %q, expected DECLINED", result.Notification.Status)
	}
	if result.Membership != nil {
		t.Error("decline must not create a membership")
	}

	var count int64
	f.db.Model(&models.Membership{}).Where("uid = ?", "applicant").Count(&count)
	if count != 0 {
		t.Errorf("expected no membership rows, found %d", count)
	}

	_, err = f.svc.HandleAction(n.NID, "manager", DecisionAccept)
	if KindOf(err) != KindInvalidState {
		t.Errorf("expected InvalidState on accept after decline, got %v", err)
	}
}

func TestHandleAction_OnlyReceiverMayAct(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	_, err := f.svc.HandleAction(n.NID, "applicant", DecisionAccept)
	if KindOf(err) != KindNotAuthorized {
		t.Errorf("expected NotAuthorized for sender acting, got %v", err)
	}
}

func TestHandleAction_InfoIsNeverActionable(t *testing.T) {
	f := newNotificationFixture(t)
	n, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "manager",
		ReceiverID: "applicant",
		OID:        f.org.OID,
		TID:        f.team.TID,
		Body:       "Welcome aboard",
		Type:       models.NotificationInfo,
	})
	if err != nil {
		t.Fatalf("failed to create info notification: %v", err)
	}

	_, err = f.svc.HandleAction(n.NID, "applicant", DecisionAccept)
	if KindOf(err) != KindInvalidState {
		t.Errorf("expected InvalidState for INFO accept, got %v", err)
	}
}

func TestHandleAction_InviteTargetsReceiver(t *testing.T) {
	f := newNotificationFixture(t)
	n, err := f.svc.Create(&CreateNotificationRequest{
		SenderID:   "manager",
		ReceiverID: "applicant",
		OID:        f.org.OID,
		TID:        f.team.TID,
		Role:       strPtr(models.RoleObserver),
		Type:       models.NotificationReqToAdd,
	})
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	result, err := f.svc.HandleAction(n.NID, "applicant", DecisionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	// REQ_TO_ADD: the receiver is who joins
	if result.Membership.UID != "applicant" {
		t.Errorf("membership uid = %q, expected applicant", result.Membership.UID)
	}
	if result.Membership.Role != models.RoleObserver {
		t.Errorf("membership role = %q, expected %q", result.Membership.Role, models.RoleObserver)
	}
}

func TestHandleAction_AcceptWithExistingMembershipKeepsPending(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	// The applicant joined through another path while the request was open
	seedMembership(t, f.db, "applicant", f.org.OID, f.team.TID, models.RoleMember)

	_, err := f.svc.HandleAction(n.NID, "manager", DecisionAccept)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}

	// The status flip must have rolled back with the membership insert
	var reread models.Notification
	if err := f.db.First(&reread, n.NID).Error; err != nil {
		t.Fatalf("failed to re-read notification: %v", err)
	}
	if reread.Status != models.NotificationPending {
		t.Errorf("status = %q, expected PENDING after rollback", reread.Status)
	}
}

func TestHandleAction_DanglingTeamIsInvalidState(t *testing.T) {
	// A dangling reference blocks both decisions, not just accept.
	for _, decision := range []string{DecisionAccept, DecisionDecline} {
		t.Run(decision, func(t *testing.T) {
			f := newNotificationFixture(t)
			n := f.joinRequest(t)

			if err := f.db.Delete(&models.Team{}, "tid = ?", f.team.TID).Error; err != nil {
				t.Fatalf("failed to delete team: %v", err)
			}

			_, err := f.svc.HandleAction(n.NID, "manager", decision)
			if KindOf(err) != KindInvalidState {
				t.Errorf("expected InvalidState for dangling team, got %v", err)
			}

			var reread models.Notification
			if err := f.db.First(&reread, n.NID).Error; err != nil {
				t.Fatalf("failed to re-read notification: %v", err)
			}
			if reread.Status != models.NotificationPending {
				t.Errorf("status = %q, expected PENDING", reread.Status)
			}
		})
	}
}

func TestDeleteNotification_PendingOnlyBySender(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	err := f.svc.Delete(n.NID, "manager")
	if KindOf(err) != KindNotAuthorized {
		t.Errorf("receiver must not delete a pending notification, got %v", err)
	}

	if err := f.svc.Delete(n.NID, "applicant"); err != nil {
		t.Errorf("sender retraction failed: %v", err)
	}
}

func TestDeleteNotification_SettledByEitherParty(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.joinRequest(t)

	if _, err := f.svc.HandleAction(n.NID, "manager", DecisionDecline); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	if err := f.svc.Delete(n.NID, "manager"); err != nil {
		t.Errorf("receiver should delete a settled notification: %v", err)
	}
}

func TestDeleteNotification_ThirdPartyDenied(t *testing.T) {
	f := newNotificationFixture(t)
	seedProfile(t, f.db, "bystander")
	n := f.joinRequest(t)

	err := f.svc.Delete(n.NID, "bystander")
	if KindOf(err) != KindNotAuthorized {
		t.Errorf("expected NotAuthorized for third party, got %v", err)
	}
}

func TestListForUser_InboxAndSent(t *testing.T) {
	f := newNotificationFixture(t)
	f.joinRequest(t)
	f.joinRequest(t)

	inbox, err := f.svc.ListForUser("manager", &NotificationListRequest{})
	if err != nil {
		t.Fatalf("inbox list failed: %v", err)
	}
	if inbox.Total != 2 {
		t.Errorf("inbox total = %d, expected 2", inbox.Total)
	}

	sent, err := f.svc.ListForUser("applicant", &NotificationListRequest{Box: "sent"})
	if err != nil {
		t.Fatalf("sent list failed: %v", err)
	}
	if sent.Total != 2 {
		t.Errorf("sent total = %d, expected 2", sent.Total)
	}

	empty, err := f.svc.ListForUser("applicant", &NotificationListRequest{})
	if err != nil {
		t.Fatalf("empty inbox list failed: %v", err)
	}
	if empty.Total != 0 {
		t.Errorf("applicant inbox total = %d, expected 0", empty.Total)
	}
}

// recordingQueue captures enqueued tasks for inspection.
type recordingQueue struct {
	tasks []*DispatchTask
}

func (q *recordingQueue) Enqueue(task *DispatchTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}
func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func TestAcceptDispatchesInfoToSender(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, "manager")
	seedProfile(t, db, "applicant")
	org := seedOrg(t, db, "manager", "Acme")
	team := seedTeam(t, db, org.OID, "Platform")

	queue := &recordingQueue{}
	svc := NewNotificationService(db, queue)

	n, err := svc.Create(&CreateNotificationRequest{
		SenderID:   "applicant",
		ReceiverID: "manager",
		OID:        org.OID,
		TID:        team.TID,
		Type:       models.NotificationReqToJoin,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.HandleAction(n.NID, "manager", DecisionAccept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("expected 1 dispatch task, got %d", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.ReceiverID != "applicant" || task.SenderID != "manager" {
		t.Errorf("dispatch should inform the requester: %+v", task)
	}
}

func TestProcessDispatchTask_WritesInfoNotification(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, "manager")
	seedProfile(t, db, "applicant")
	org := seedOrg(t, db, "manager", "Acme")
	team := seedTeam(t, db, org.OID, "Platform")

	svc := NewNotificationService(db, nil)
	task := &DispatchTask{
		SenderID:   "manager",
		ReceiverID: "applicant",
		OID:        org.OID,
		TID:        team.TID,
		Body:       "Your request to join was accepted with role Member.",
	}
	if err := svc.ProcessDispatchTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessDispatchTask failed: %v", err)
	}

	var info models.Notification
	err := db.Where("type = ? AND receiver_id = ?", models.NotificationInfo, "applicant").First(&info).Error
	if err != nil {
		t.Fatalf("expected the INFO notification in the store: %v", err)
	}
	if info.Body != task.Body {
		t.Errorf("body = %q, expected %q", info.Body, task.Body)
	}
}
