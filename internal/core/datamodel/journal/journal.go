package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

type JournalEntry struct {
	ID            int64           `gorm:"primaryKey"`
	ApplicationID int64           `gorm:"column:application_id;not null;uniqueIndex"`
	EntryDate     time.Time       `gorm:"column:entry_date;type:date"`
	Description   string          `gorm:"column:description"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	Status        string          `gorm:"column:status;default:draft"`
	ExportedAt    *time.Time      `gorm:"column:exported_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:now()"`

	Lines []JournalLine `gorm:"foreignKey:JournalEntryID"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

type JournalLine struct {
	ID             int64           `gorm:"primaryKey"`
	JournalEntryID int64           `gorm:"column:journal_entry_id;not null;index"`
	AccountCode    string          `gorm:"column:account_code;not null"`
	AccountName    string          `gorm:"column:account_name"`
	Debit          decimal.Decimal `gorm:"column:debit;type:numeric(14,2)"`
	Credit         decimal.Decimal `gorm:"column:credit;type:numeric(14,2)"`
	CreatedAt      time.Time       `gorm:"column:created_at;default:now()"`
}

func (JournalLine) TableName() string {
	return "journal_lines"
}
