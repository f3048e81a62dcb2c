package accounting

import (
	"time"

	journalDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/journal"
	"github.com/shopspring/decimal"
)

const (
	EntryStatusDraft    = "draft"
	EntryStatusExported = "exported"
)

// Double-entry accounts. The debit side varies by application kind, the
// credit side is always the payables account.
const (
	AccountCodePayables  = "2100"
	AccountNamePayables  = "Accounts Payable"
	AccountCodeExpense   = "6100"
	AccountNameExpense   = "General Expenses"
	AccountCodeTravel    = "6200"
	AccountNameTravel    = "Travel & Transport"
	AccountCodePersonnel = "6300"
	AccountNamePersonnel = "Personnel Costs"
)

type Line struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type Entry struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	EntryDate     time.Time       `json:"entry_date"`
	Description   string          `json:"description"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	ExportedAt    *time.Time      `json:"exported_at,omitempty"`
	Lines         []Line          `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (e *Entry) IsExported() bool {
	return e.Status == EntryStatusExported
}

// debitAccountFor maps an application code to its expense account.
func debitAccountFor(code string) (string, string) {
	switch code {
	case "TRP":
		return AccountCodeTravel, AccountNameTravel
	case "LEV", "WKR":
		return AccountCodePersonnel, AccountNamePersonnel
	default:
		return AccountCodeExpense, AccountNameExpense
	}
}

// NewDraftEntry builds a balanced two-line draft entry for an approved
// application: the mapped expense account is debited and payables credited
// for the same amount.
func NewDraftEntry(applicationID int64, applicationCode, description string, amount decimal.Decimal, entryDate time.Time) *Entry {
	debitCode, debitName := debitAccountFor(applicationCode)
	now := time.Now()

	return &Entry{
		ApplicationID: applicationID,
		EntryDate:     entryDate,
		Description:   description,
		TotalAmount:   amount,
		Status:        EntryStatusDraft,
		Lines: []Line{
			{AccountCode: debitCode, AccountName: debitName, Debit: amount, Credit: decimal.Zero},
			{AccountCode: AccountCodePayables, AccountName: AccountNamePayables, Debit: decimal.Zero, Credit: amount},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBalanced checks that total debits equal total credits.
func (e *Entry) IsBalanced() bool {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range e.Lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits.Equal(credits)
}

func ToDataModel(e *Entry) *journalDatamodel.JournalEntry {
	lines := make([]journalDatamodel.JournalLine, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = journalDatamodel.JournalLine{
			JournalEntryID: e.ID,
			AccountCode:    line.AccountCode,
			AccountName:    line.AccountName,
			Debit:          line.Debit,
			Credit:         line.Credit,
		}
	}

	return &journalDatamodel.JournalEntry{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		EntryDate:     e.EntryDate,
		Description:   e.Description,
		TotalAmount:   e.TotalAmount,
		Status:        e.Status,
		ExportedAt:    e.ExportedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Lines:         lines,
	}
}

func FromDataModel(m *journalDatamodel.JournalEntry) *Entry {
	lines := make([]Line, len(m.Lines))
	for i, line := range m.Lines {
		lines[i] = Line{
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}

	return &Entry{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		EntryDate:     m.EntryDate,
		Description:   m.Description,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
		ExportedAt:    m.ExportedAt,
		Lines:         lines,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
