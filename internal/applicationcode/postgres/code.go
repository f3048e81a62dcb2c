package postgres

import (
	"github.com/bp848/mqdriven-sub004/internal/applicationcode"
	codeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/applicationcode"
	"gorm.io/gorm"
)

type CodeRepository struct {
	db *gorm.DB
}

func NewCodeRepository(db *gorm.DB) applicationcode.RepositoryAPI {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) GetAll() ([]*codeDatamodel.ApplicationCode, error) {
	var codes []*codeDatamodel.ApplicationCode
	err := r.db.Order("code ASC").Find(&codes).Error
	return codes, err
}

func (r *CodeRepository) GetByID(id int64) (*codeDatamodel.ApplicationCode, error) {
	var code codeDatamodel.ApplicationCode
	err := r.db.Where("id = ?", id).First(&code).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *CodeRepository) GetByCode(codeStr string) (*codeDatamodel.ApplicationCode, error) {
	var code codeDatamodel.ApplicationCode
	err := r.db.Where("code = ?", codeStr).First(&code).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *CodeRepository) Create(code *codeDatamodel.ApplicationCode) error {
	return r.db.Create(code).Error
}
