package models

import "time"

// ActivityRecord is one authored event entry. Date values are timezone-naive and carry hour granularity.
type ActivityRecord struct {
	Name     string
	OccursAt time.Time
	Location string
}

// Activity mirrors an exported record in the activities table.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Position    int       `gorm:"uniqueIndex;not null" json:"position"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Description *string   `gorm:"size:255" json:"description"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the site database.
func (Activity) TableName() string {
	return "activities"
}
