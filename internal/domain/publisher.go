package domain

import "time"

// Publisher is a known publisher identity. The directory is a weak-reference
// target: records store a publisher ID, no ownership implied.
type Publisher struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Email     string    `gorm:"type:text;uniqueIndex:idx_publishers_email" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Publisher.
func (Publisher) TableName() string {
	return "publishers"
}

// PublisherMatch is the outcome of one publisher-match call. Matched=false
// with a nil PublisherID is a valid terminal state, not an error.
type PublisherMatch struct {
	Matched     bool    `json:"matched"`
	PublisherID *string `json:"publisherId"`
}
