package domain

import "time"

// DataFinal is the terminal representation of a reviewed, accepted row.
// Finals are copied from DataInProcess at promotion and are independent of
// their originating task afterwards: deleting the task leaves them intact.
// The engine never mutates a final after creation except for publisher
// re-matching, which overwrites only the publisher fields.
type DataFinal struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	TaskID         string    `gorm:"type:text;index:idx_final_task" json:"task_id"`
	RawURL         string    `gorm:"type:text;not null" json:"raw_url"`
	Domain         string    `gorm:"type:text;index:idx_final_domain" json:"domain"`
	PublisherName  string    `gorm:"type:text" json:"publisher_name,omitempty"`
	PublisherEmail string    `gorm:"type:text" json:"publisher_email,omitempty"`
	IsDuplicate    bool      `json:"is_duplicate"`
	RegistrySiteID string    `gorm:"type:text" json:"registry_site_id,omitempty"`
	PublisherID    *string   `gorm:"type:text" json:"publisher_id,omitempty"`
	FinalizedAt    time.Time `json:"finalized_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for DataFinal.
func (DataFinal) TableName() string {
	return "data_final"
}
