package models

import "time"

// SequenceModel is one document-number counter row. The generator takes
// a row lock before incrementing so concurrent callers never share a number.
type SequenceModel struct {
	Code      string    `gorm:"type:varchar(30);primaryKey"`
	NextValue int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}
