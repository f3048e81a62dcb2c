package postgres

import (
	"time"

	"github.com/bp848/mqdriven-sub004/internal/accounting"
	journalDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/journal"
	"gorm.io/gorm"
)

type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) accounting.RepositoryAPI {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(entry *journalDatamodel.JournalEntry) error {
	return r.db.Create(entry).Error
}

func (r *JournalRepository) GetByID(id int64) (*journalDatamodel.JournalEntry, error) {
	var entry journalDatamodel.JournalEntry
	err := r.db.Preload("Lines").Where("id = ?", id).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *JournalRepository) GetByApplicationID(applicationID int64) (*journalDatamodel.JournalEntry, error) {
	var entry journalDatamodel.JournalEntry
	err := r.db.Preload("Lines").Where("application_id = ?", applicationID).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *JournalRepository) GetAll(status string, limit, offset int) ([]*journalDatamodel.JournalEntry, error) {
	query := r.db.Preload("Lines").Order("entry_date DESC, id DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []*journalDatamodel.JournalEntry
	err := query.Find(&entries).Error
	return entries, err
}

func (r *JournalRepository) MarkExported(id int64, exportedAt time.Time) error {
	return r.db.Model(&journalDatamodel.JournalEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      accounting.EntryStatusExported,
			"exported_at": exportedAt,
			"updated_at":  time.Now(),
		}).Error
}
