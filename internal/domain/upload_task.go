package domain

import "time"

// TaskStatus represents the lifecycle state of an upload task.
// Values include TaskStatusPending, TaskStatusInProgress, and TaskStatusCompleted.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// DataUploadTask represents one uploaded listing file routed through review.
// Status is derived from the state of its rows and is never set directly by
// callers; the task service recomputes it after every row mutation.
type DataUploadTask struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	FileName      string     `gorm:"type:text;not null" json:"file_name"`
	StorageKey    string     `gorm:"type:text" json:"storage_key,omitempty"`
	Status        TaskStatus `gorm:"type:text;index:idx_upload_tasks_status;default:pending" json:"status"`
	AssigneeID    *string    `gorm:"type:text;index:idx_upload_tasks_assignee" json:"assignee_id,omitempty"`
	CreatedBy     string     `gorm:"type:text;not null" json:"created_by"`
	TotalRows     int        `gorm:"default:0" json:"total_rows"`
	DiscardedRows int        `gorm:"default:0" json:"discarded_rows"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for DataUploadTask.
func (DataUploadTask) TableName() string {
	return "data_upload_tasks"
}
