package domain

import "time"

// ReviewState represents the per-row review state of an in-process record.
// Values include ReviewStatePending, ReviewStateClassified,
// ReviewStateMatched, and ReviewStateInvalid.
type ReviewState string

const (
	// ReviewStatePending means the row has been loaded but not yet touched.
	ReviewStatePending ReviewState = "pending"
	// ReviewStateClassified means reconciliation has run for the row.
	ReviewStateClassified ReviewState = "classified"
	// ReviewStateMatched means a reviewer has supplied publisher details.
	ReviewStateMatched ReviewState = "matched"
	// ReviewStateInvalid means the row's site reference could not be
	// normalized to a domain and the row was rejected at load time.
	ReviewStateInvalid ReviewState = "invalid"
)

// DataInProcess represents one candidate site still under review. Rows are
// owned by their task: deleting the task deletes them in the same
// transaction, and promotion to DataFinal removes the row.
type DataInProcess struct {
	ID             string      `gorm:"type:text;primaryKey" json:"id"`
	TaskID         string      `gorm:"type:text;not null;index:idx_in_process_task" json:"task_id"`
	Task           *DataUploadTask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	RawURL         string      `gorm:"type:text;not null" json:"raw_url"`
	Domain         string      `gorm:"type:text;index:idx_in_process_domain" json:"domain"`
	PublisherName  string      `gorm:"type:text" json:"publisher_name,omitempty"`
	PublisherEmail string      `gorm:"type:text" json:"publisher_email,omitempty"`
	// IsDuplicate is nil until reconciliation has classified the row.
	IsDuplicate    *bool       `json:"is_duplicate,omitempty"`
	RegistrySiteID string      `gorm:"type:text" json:"registry_site_id,omitempty"`
	PublisherID    *string     `gorm:"type:text" json:"publisher_id,omitempty"`
	ReviewState    ReviewState `gorm:"type:text;index:idx_in_process_state;default:pending" json:"review_state"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName returns the database table name for DataInProcess.
func (DataInProcess) TableName() string {
	return "data_in_process"
}

// Classified reports whether reconciliation has assigned the row a
// duplicate/new outcome.
func (r *DataInProcess) Classified() bool {
	return r.IsDuplicate != nil
}

// RowClassification is the per-row outcome of one reconciliation run,
// applied to a task's rows in a single transaction.
type RowClassification struct {
	RowID          string
	Invalid        bool
	Duplicate      bool
	RegistrySiteID string
}
