package model

import (
	"github.com/shopspring/decimal"
)

// RecoveryOutcome model, one row per reconciled order. The (runID, seq)
// unique index keeps journal replays idempotent.
type RecoveryOutcome struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	RunID string `json:"runID" gorm:"omitempty; not null; default:''; type:varchar(64); uniqueindex:idx_ro_run_seq;"`
	Seq   int64  `json:"seq" gorm:"omitempty; not null; default:0; uniqueindex:idx_ro_run_seq;"`

	OrderID string `json:"orderID" gorm:"omitempty; not null; default:''; type:varchar(64); index;"`
	Action  string `json:"action" gorm:"omitempty; not null; default:''; type:varchar(16);"`

	OrderState      string `json:"orderState" gorm:"omitempty; not null; default:''; type:varchar(32);"`
	TicketState     string `json:"ticketState" gorm:"omitempty; not null; default:''; type:varchar(32);"`
	PrevTicketState string `json:"prevTicketState" gorm:"omitempty; not null; default:''; type:varchar(32);"`

	NeedsDfd          int8 `json:"needsDfd" gorm:"omitempty; not null; default:0; type:tinyint(1);"`
	ForcedTicketState int8 `json:"forcedTicketState" gorm:"omitempty; not null; default:0; type:tinyint(1);"`

	RecallQty int64           `json:"recallQty" gorm:"omitempty; not null; default:0;"`
	CumQty    int64           `json:"cumQty" gorm:"omitempty; not null; default:0;"`
	AvgPrice  decimal.Decimal `json:"avgPrice" gorm:"omitempty; not null; default:0; type:decimal(36,18);"`

	Time GormTime `json:"time" gorm:"omitempty; not null;"`

	Model
}
