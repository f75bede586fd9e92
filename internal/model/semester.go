package model

import "time"

// Semester maps to semesters
type Semester struct {
	SemesterID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	Name       string    `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate  time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsActive   bool      `gorm:"not null;default:false"                         json:"is_active"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | archived
	SoftDeleteModel
}

// TableName table name
func (Semester) TableName() string { return "semesters" }
