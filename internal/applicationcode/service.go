package applicationcode

import (
	"log/slog"

	codeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/applicationcode"
)

type RepositoryAPI interface {
	GetAll() ([]*codeDatamodel.ApplicationCode, error)
	GetByID(id int64) (*codeDatamodel.ApplicationCode, error)
	GetByCode(code string) (*codeDatamodel.ApplicationCode, error)
	Create(code *codeDatamodel.ApplicationCode) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCodes() ([]CodeResponse, error) {
	models, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get application codes from repository", "error", err)
		return nil, err
	}

	var responses []CodeResponse
	for _, model := range models {
		code := FromDataModel(model)
		if code.IsActiveCode() {
			responses = append(responses, code.ToResponse())
		}
	}
	return responses, nil
}

func (s *Service) GetCodeByID(id int64) (*ApplicationCode, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	return FromDataModel(model), nil
}

// CodeString resolves a catalog ID to its short code ("EXP", "TRP", ...).
// Unknown IDs come back empty; callers treat that as the general case.
func (s *Service) CodeString(id int64) string {
	code, err := s.GetCodeByID(id)
	if err != nil || code == nil {
		return ""
	}
	return code.Code
}

// IsValidCode reports whether the given catalog ID refers to an active code.
func (s *Service) IsValidCode(id int64) bool {
	code, err := s.GetCodeByID(id)
	if err != nil {
		s.logger.Warn("error checking application code validity", "code_id", id, "error", err)
		return false
	}
	return code != nil && code.IsActiveCode()
}
