package models

import "time"

// ProjectModel is the slice of the projects table the channel service reads.
type ProjectModel struct {
	ID        uint   `gorm:"primarykey"`
	OwnerID   string `gorm:"not null;size:64;index:idx_project_owner"`
	Name      string `gorm:"not null;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProjectModel) TableName() string {
	return "projects"
}
