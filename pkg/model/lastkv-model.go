package model

// Lastkv model
//
// Used to record watermark values. The archiver keeps the highest journal
// seq it has written per run, so a journal replay after a restart does not
// re-insert rows it already saved.
type Lastkv struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	App string `json:"app" gorm:"omitempty; not null; default:''; type:varchar(64); uniqueindex:idx_app_key;"` // e.g archiver
	Key string `json:"key" gorm:"omitempty; not null; default:''; type:varchar(64); uniqueindex:idx_app_key;"` // e.g saved_seq_<runID>
	Val int64  `json:"val" gorm:"omitempty; not null; default:0;"`

	Model
}

const (
	LASTKV_K_SAVED_SEQ = "saved_seq_" // this+runID
)
