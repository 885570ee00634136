package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusStart is the status every new task starts in.
const StatusStart = "start"

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ColumnID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"columnId"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	TimeStart   *time.Time `json:"timeStart"`
	TimeEnd     *time.Time `json:"timeEnd"`
	Status      string     `gorm:"not null" json:"status"`
	Priority    *string    `json:"priority"`
	Order       int        `gorm:"column:position;not null" json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Subtask struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaskID uuid.UUID `gorm:"type:uuid;not null;index" json:"taskId"`
	Title  string    `gorm:"not null" json:"title"`
	IsDone bool      `gorm:"not null;default:false" json:"isDone"`
}

type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaskID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"taskId"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	Content   string     `gorm:"not null" json:"content"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

// UserTask assigns a user to a task. The pair is the primary key.
type UserTask struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"userId"`
	TaskID uuid.UUID `gorm:"type:uuid;primaryKey" json:"taskId"`
}
