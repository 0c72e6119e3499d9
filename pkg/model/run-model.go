package model

// RecoveryRun model, one row per recovery pass, written by the archiver
// from the journal summary line
type RecoveryRun struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	RunID string `json:"runID" gorm:"omitempty; not null; default:''; type:varchar(64); uniqueindex:idx_rr_run;"`

	Processed        int64 `json:"processed" gorm:"omitempty; not null; default:0;"`
	Rebuilt          int64 `json:"rebuilt" gorm:"omitempty; not null; default:0;"`
	Republished      int64 `json:"republished" gorm:"omitempty; not null; default:0;"`
	Ignored          int64 `json:"ignored" gorm:"omitempty; not null; default:0;"`
	Errored          int64 `json:"errored" gorm:"omitempty; not null; default:0;"`
	DiscardedHistory int64 `json:"discardedHistory" gorm:"omitempty; not null; default:0;"`
	DiscardedOms     int64 `json:"discardedOms" gorm:"omitempty; not null; default:0;"`

	CacheTickets int `json:"cacheTickets" gorm:"omitempty; not null; default:0;"`
	CacheOrders  int `json:"cacheOrders" gorm:"omitempty; not null; default:0;"`

	TicketBookmark string `json:"ticketBookmark" gorm:"omitempty; not null; default:''; type:varchar(64);"`
	OmsBookmark    string `json:"omsBookmark" gorm:"omitempty; not null; default:''; type:varchar(64);"`

	DurationMs int64    `json:"durationMs" gorm:"omitempty; not null; default:0;"`
	Time       GormTime `json:"time" gorm:"omitempty; not null;"`

	Model
}
