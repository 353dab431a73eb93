package services

import (
	"errors"
	"time"

	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

type ObjectiveService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewObjectiveService(db *gorm.DB) *ObjectiveService {
	return &ObjectiveService{db: db, authz: NewAuthzService(db)}
}

// RecomputeKeyResultStatus derives a key result's status from its progress
// and target date. Pure and idempotent: it is applied lazily on every read
// and persisted only on writes. Completion wins over the deadline for all
// measurement kinds.
func RecomputeKeyResultStatus(kr *models.KeyResult, now time.Time) string {
	if kr.Progress >= kr.MaxProgress {
		return models.KeyStatusComplete
	}
	if kr.TargetDate != nil && now.After(*kr.TargetDate) {
		return models.KeyStatusOverdue
	}
	return models.KeyStatusDue
}

// teamForWrite loads the team and checks that actingUID holds a
// non-Observer role in it (or org admin capability).
func (s *ObjectiveService) teamForWrite(tid, actingUID string) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, "tid = ?", tid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("team not found")
		}
		return nil, err
	}

	var org models.Organization
	if err := s.db.First(&org, team.OID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}
	if org.IsAdmin(actingUID) {
		return &team, nil
	}

	ok, err := s.authz.HasTeamRole(actingUID, team.OID, tid, models.RoleManager, models.RoleMember)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized("observers cannot modify objectives")
	}
	return &team, nil
}

type CreateObjectiveRequest struct {
	ObjName    string     `json:"obj_name" binding:"required"`
	ObjDesc    string     `json:"obj_desc"`
	TargetDate *time.Time `json:"target_date"`
}

// CreateObjective adds an objective to the team. The target date, when
// present, must not precede creation.
func (s *ObjectiveService) CreateObjective(tid string, req *CreateObjectiveRequest, actingUID string) (*models.Objective, error) {
	team, err := s.teamForWrite(tid, actingUID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.TargetDate != nil && req.TargetDate.Before(now) {
		return nil, ErrValidation("target date cannot be in the past")
	}

	obj := models.Objective{
		TeamID:     team.TID,
		ObjName:    req.ObjName,
		ObjDesc:    req.ObjDesc,
		TargetDate: req.TargetDate,
	}
	if err := s.db.Create(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

type UpdateObjectiveRequest struct {
	ObjName    string     `json:"obj_name"`
	ObjDesc    string     `json:"obj_desc"`
	TargetDate *time.Time `json:"target_date"`
}

func (s *ObjectiveService) UpdateObjective(objID uint, req *UpdateObjectiveRequest, actingUID string) (*models.Objective, error) {
	obj, err := s.getObjective(objID)
	if err != nil {
		return nil, err
	}
	if _, err := s.teamForWrite(obj.TeamID, actingUID); err != nil {
		return nil, err
	}

	if req.ObjName != "" {
		obj.ObjName = req.ObjName
	}
	if req.ObjDesc != "" {
		obj.ObjDesc = req.ObjDesc
	}
	if req.TargetDate != nil {
		if req.TargetDate.Before(obj.CreatedOn) {
			return nil, ErrValidation("target date cannot precede creation date")
		}
		obj.TargetDate = req.TargetDate
	}

	if err := s.db.Save(obj).Error; err != nil {
		return nil, err
	}
	return obj, nil
}

// DeleteObjective removes the objective and its key results. Requires
// manager capability on the owning team.
func (s *ObjectiveService) DeleteObjective(objID uint, actingUID string) error {
	obj, err := s.getObjective(objID)
	if err != nil {
		return err
	}

	var team models.Team
	if err := s.db.First(&team, "tid = ?", obj.TeamID).Error; err != nil {
		return err
	}
	var org models.Organization
	if err := s.db.First(&org, team.OID).Error; err != nil {
		return err
	}
	ok, err := s.authz.CanManageTeam(actingUID, &org, team.TID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized("only team managers can delete objectives")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("objective_id = ?", objID).Delete(&models.KeyResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Objective{}, objID).Error
	})
	if err != nil {
		return ErrTransaction("objective deletion failed", err)
	}
	return nil
}

func (s *ObjectiveService) getObjective(objID uint) (*models.Objective, error) {
	var obj models.Objective
	if err := s.db.First(&obj, objID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("objective not found")
		}
		return nil, err
	}
	return &obj, nil
}

type CreateKeyResultRequest struct {
	KeyName     string     `json:"key_name" binding:"required"`
	KeyDesc     string     `json:"key_desc"`
	Type        string     `json:"type" binding:"required"`
	Progress    float64    `json:"progress"`
	MaxProgress float64    `json:"max_progress"`
	TargetDate  *time.Time `json:"target_date"`
}

// CreateKeyResult adds a key result under the objective, deriving its
// initial status.
func (s *ObjectiveService) CreateKeyResult(objID uint, req *CreateKeyResultRequest, actingUID string) (*models.KeyResult, error) {
	obj, err := s.getObjective(objID)
	if err != nil {
		return nil, err
	}
	if _, err := s.teamForWrite(obj.TeamID, actingUID); err != nil {
		return nil, err
	}

	if !models.ValidKeyType(req.Type) {
		return nil, ErrValidation("unknown key result type: " + req.Type)
	}
	if req.Progress < 0 || req.MaxProgress < 0 {
		return nil, ErrValidation("progress values cannot be negative")
	}
	if req.Progress > req.MaxProgress {
		return nil, ErrInvalidState("progress exceeds max progress")
	}

	kr := models.KeyResult{
		ObjectiveID: objID,
		KeyName:     req.KeyName,
		KeyDesc:     req.KeyDesc,
		Type:        req.Type,
		Progress:    req.Progress,
		MaxProgress: req.MaxProgress,
		TargetDate:  req.TargetDate,
	}
	kr.Status = RecomputeKeyResultStatus(&kr, time.Now())

	if err := s.db.Create(&kr).Error; err != nil {
		return nil, err
	}
	return &kr, nil
}

// UpdateKeyResultProgress sets progress and re-derives the status.
func (s *ObjectiveService) UpdateKeyResultProgress(keyID uint, progress float64, actingUID string) (*models.KeyResult, error) {
	var kr models.KeyResult
	if err := s.db.First(&kr, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("key result not found")
		}
		return nil, err
	}

	obj, err := s.getObjective(kr.ObjectiveID)
	if err != nil {
		return nil, err
	}
	if _, err := s.teamForWrite(obj.TeamID, actingUID); err != nil {
		return nil, err
	}

	if progress < 0 {
		return nil, ErrValidation("progress cannot be negative")
	}
	if progress > kr.MaxProgress {
		return nil, ErrInvalidState("progress exceeds max progress")
	}

	kr.Progress = progress
	kr.Status = RecomputeKeyResultStatus(&kr, time.Now())
	if err := s.db.Save(&kr).Error; err != nil {
		return nil, err
	}
	return &kr, nil
}

// DeleteKeyResult removes a key result. Same capability as creating one.
func (s *ObjectiveService) DeleteKeyResult(keyID uint, actingUID string) error {
	var kr models.KeyResult
	if err := s.db.First(&kr, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("key result not found")
		}
		return err
	}

	obj, err := s.getObjective(kr.ObjectiveID)
	if err != nil {
		return err
	}
	if _, err := s.teamForWrite(obj.TeamID, actingUID); err != nil {
		return err
	}

	return s.db.Delete(&kr).Error
}

type ObjectiveProgress struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// Progress counts completed vs total key results. Every key result counts
// equally regardless of measurement kind. Statuses are recomputed lazily,
// so a key result whose deadline passed since the last write still reads
// as OVERDUE here.
func (s *ObjectiveService) Progress(objID uint) (*ObjectiveProgress, error) {
	if _, err := s.getObjective(objID); err != nil {
		return nil, err
	}

	var krs []models.KeyResult
	if err := s.db.Where("objective_id = ?", objID).Find(&krs).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	progress := &ObjectiveProgress{Total: int64(len(krs))}
	for i := range krs {
		if RecomputeKeyResultStatus(&krs[i], now) == models.KeyStatusComplete {
			progress.Completed++
		}
	}
	return progress, nil
}

// ObjectiveWithKeyResults is an objective plus its key results with
// freshly derived statuses.
type ObjectiveWithKeyResults struct {
	models.Objective
	KeyResults []models.KeyResult `json:"key_results"`
}

// ListTeamObjectives returns the team's objectives with key results,
// applying the lazy status recompute on read.
func (s *ObjectiveService) ListTeamObjectives(tid string) ([]ObjectiveWithKeyResults, error) {
	var team models.Team
	if err := s.db.First(&team, "tid = ?", tid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("team not found")
		}
		return nil, err
	}

	var objectives []models.Objective
	if err := s.db.Where("team_id = ?", tid).Order("created_on ASC").Find(&objectives).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]ObjectiveWithKeyResults, 0, len(objectives))
	for _, obj := range objectives {
		var krs []models.KeyResult
		if err := s.db.Where("objective_id = ?", obj.ObjID).Order("added_on ASC").Find(&krs).Error; err != nil {
			return nil, err
		}
		for i := range krs {
			krs[i].Status = RecomputeKeyResultStatus(&krs[i], now)
		}
		result = append(result, ObjectiveWithKeyResults{Objective: obj, KeyResults: krs})
	}
	return result, nil
}
