package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type EntryResponse struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	EntryDate     string          `json:"entry_date"`
	Description   string          `json:"description"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	ExportedAt    *time.Time      `json:"exported_at,omitempty"`
	Lines         []LineResponse  `json:"lines"`
}

type EntriesResponse struct {
	Entries []EntryResponse `json:"journal_entries"`
}

type ExportResponse struct {
	Entry      EntryResponse `json:"entry"`
	ExportedAt time.Time     `json:"exported_at"`
}

func (e *Entry) ToResponse() EntryResponse {
	lines := make([]LineResponse, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = LineResponse{
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}
	return EntryResponse{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		EntryDate:     e.EntryDate.Format("2006-01-02"),
		Description:   e.Description,
		TotalAmount:   e.TotalAmount,
		Status:        e.Status,
		ExportedAt:    e.ExportedAt,
		Lines:         lines,
	}
}
