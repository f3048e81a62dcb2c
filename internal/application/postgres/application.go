package postgres

import (
	"errors"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/application"
	applicationDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/application"
	"gorm.io/gorm"
)

// ApplicationRepository implements application.Repository using GORM.
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(app *application.Application) error {
	model, err := application.ToDataModel(app)
	if err != nil {
		return err
	}
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	app.ID = model.ID
	app.CreatedAt = model.CreatedAt
	app.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *ApplicationRepository) GetByID(id int64) (*application.Application, error) {
	var model applicationDatamodel.Application
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrApplicationNotFound
		}
		return nil, err
	}
	return application.FromDataModel(&model), nil
}

func (r *ApplicationRepository) GetByApplicant(applicantID int64, limit, offset int) ([]*application.Application, error) {
	var models []*applicationDatamodel.Application
	err := r.db.Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return application.FromDataModelSlice(models), nil
}

// GetByApprover returns applications currently waiting on the given approver.
func (r *ApplicationRepository) GetByApprover(approverID int64, limit, offset int) ([]*application.Application, error) {
	var models []*applicationDatamodel.Application
	err := r.db.Where("approver_id = ? AND status = ?", approverID, application.StatusPendingApproval).
		Order("submitted_at ASC"). // FIFO for approvers
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return application.FromDataModelSlice(models), nil
}

func (r *ApplicationRepository) GetAll(limit, offset int) ([]*application.Application, error) {
	var models []*applicationDatamodel.Application
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return application.FromDataModelSlice(models), nil
}

func (r *ApplicationRepository) UpdateDraft(app *application.Application) error {
	model, err := application.ToDataModel(app)
	if err != nil {
		return err
	}

	// Draft edits carry the same guard as transitions: the row must still be
	// a draft when the write lands.
	result := r.db.Model(&applicationDatamodel.Application{}).
		Where("id = ? AND status = ?", app.ID, application.StatusDraft).
		Updates(map[string]interface{}{
			"form_data":         model.FormData,
			"approval_route_id": model.ApprovalRouteID,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrStaleApplication
	}
	return nil
}

// ApplyTransition performs the compare-and-swap write: the update only lands
// when the row still carries the status and level the transition was
// computed against. Zero affected rows means somebody else acted first.
func (r *ApplicationRepository) ApplyTransition(id int64, t *application.Transition) error {
	updates := map[string]interface{}{
		"status":        t.Status,
		"current_level": t.CurrentLevel,
		"updated_at":    time.Now(),
	}
	if t.ApproverID != nil {
		updates["approver_id"] = *t.ApproverID
	}
	if t.RouteID != nil {
		updates["approval_route_id"] = *t.RouteID
	}
	if t.SubmittedAt != nil {
		updates["submitted_at"] = *t.SubmittedAt
	}
	if t.ApprovedAt != nil {
		updates["approved_at"] = *t.ApprovedAt
	}
	if t.RejectedAt != nil {
		updates["rejected_at"] = *t.RejectedAt
	}
	if t.RejectionReason != nil {
		updates["rejection_reason"] = *t.RejectionReason
	}

	result := r.db.Model(&applicationDatamodel.Application{}).
		Where("id = ? AND status = ? AND current_level = ?", id, t.ExpectedStatus, t.ExpectedLevel).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrStaleApplication
	}
	return nil
}

// UpdateAccountingStatus flips the journal side-flag under its own guard so
// an application is exported at most once.
func (r *ApplicationRepository) UpdateAccountingStatus(id int64, from, to string) error {
	result := r.db.Model(&applicationDatamodel.Application{}).
		Where("id = ? AND status = ? AND accounting_status = ?", id, application.StatusApproved, from).
		Updates(map[string]interface{}{
			"accounting_status": to,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrAlreadyExported
	}
	return nil
}

func (r *ApplicationRepository) Delete(id int64) error {
	result := r.db.Where("id = ? AND status = ?", id, application.StatusDraft).
		Delete(&applicationDatamodel.Application{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrApplicationNotFound
	}
	return nil
}
