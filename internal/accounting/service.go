package accounting

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/application"
	journalDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/journal"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	Create(entry *journalDatamodel.JournalEntry) error
	GetByID(id int64) (*journalDatamodel.JournalEntry, error)
	GetByApplicationID(applicationID int64) (*journalDatamodel.JournalEntry, error)
	GetAll(status string, limit, offset int) ([]*journalDatamodel.JournalEntry, error)
	MarkExported(id int64, exportedAt time.Time) error
}

// ApplicationStore is the slice of the application repository the journal
// side needs: reading the row and flipping its accounting flag.
type ApplicationStore interface {
	GetByID(id int64) (*application.Application, error)
	UpdateAccountingStatus(id int64, from, to string) error
}

// CodeResolver resolves an application code ID to its short code string.
type CodeResolver interface {
	CodeString(id int64) string
}

type Service struct {
	repo   RepositoryAPI
	apps   ApplicationStore
	codes  CodeResolver
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, apps ApplicationStore, codes CodeResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		apps:   apps,
		codes:  codes,
		logger: logger,
	}
}

// DraftEntryForApplication creates the draft journal entry for an approved
// application. Safe to call more than once: the unique index on
// application_id rejects the second insert.
func (s *Service) DraftEntryForApplication(applicationID int64) error {
	existing, err := s.repo.GetByApplicationID(applicationID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Debug("journal entry already drafted", "application_id", applicationID)
		return nil
	}

	app, err := s.apps.GetByID(applicationID)
	if err != nil {
		return err
	}
	if app.Status != application.StatusApproved {
		return internal.ErrNotExportable
	}

	amount, ok := application.DeriveAmount(app.FormData)
	if !ok {
		amount = 0
	}

	code := s.codes.CodeString(app.ApplicationCodeID)
	entryDate := time.Now()
	if app.ApprovedAt != nil {
		entryDate = *app.ApprovedAt
	}

	entry := NewDraftEntry(
		applicationID,
		code,
		fmt.Sprintf("%s application #%d", code, applicationID),
		decimal.NewFromFloat(amount),
		entryDate,
	)

	if err := s.repo.Create(ToDataModel(entry)); err != nil {
		s.logger.Error("failed to draft journal entry", "application_id", applicationID, "error", err)
		return err
	}

	s.logger.Info("journal entry drafted",
		"application_id", applicationID,
		"amount", amount,
		"code", code)
	return nil
}

// ExportJournal marks the application's journal entry as exported. The
// application side flag flips first under its own guard, so the export
// happens at most once even under concurrent requests.
func (s *Service) ExportJournal(applicationID int64) (*ExportResponse, error) {
	app, err := s.apps.GetByID(applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsExportable() {
		if app.Status == application.StatusApproved {
			return nil, internal.ErrAlreadyExported
		}
		return nil, internal.ErrNotExportable
	}

	model, err := s.repo.GetByApplicationID(applicationID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		// approval event may not have landed yet; draft inline
		if err := s.DraftEntryForApplication(applicationID); err != nil {
			return nil, err
		}
		model, err = s.repo.GetByApplicationID(applicationID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.apps.UpdateAccountingStatus(applicationID, application.AccountingStatusNone, application.AccountingStatusExported); err != nil {
		return nil, err
	}

	exportedAt := time.Now()
	if err := s.repo.MarkExported(model.ID, exportedAt); err != nil {
		s.logger.Error("failed to mark journal entry exported", "entry_id", model.ID, "error", err)
		return nil, err
	}

	entry := FromDataModel(model)
	entry.Status = EntryStatusExported
	entry.ExportedAt = &exportedAt

	s.logger.Info("journal entry exported",
		"application_id", applicationID,
		"entry_id", entry.ID,
		"total_amount", entry.TotalAmount.String())

	return &ExportResponse{Entry: entry.ToResponse(), ExportedAt: exportedAt}, nil
}

func (s *Service) GetJournalForApplication(applicationID int64) (*EntryResponse, error) {
	model, err := s.repo.GetByApplicationID(applicationID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, internal.NewNotFoundError("no journal entry for this application", internal.ErrCodeApplicationNotFound)
	}
	resp := FromDataModel(model).ToResponse()
	return &resp, nil
}

func (s *Service) ListJournals(status string, limit, offset int) ([]EntryResponse, error) {
	models, err := s.repo.GetAll(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list journal entries", "error", err)
		return nil, err
	}

	responses := make([]EntryResponse, 0, len(models))
	for _, model := range models {
		responses = append(responses, FromDataModel(model).ToResponse())
	}
	return responses, nil
}
