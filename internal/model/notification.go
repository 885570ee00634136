package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted message addressed to one user. Only IsRead
// changes after creation.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Message     string     `gorm:"not null" json:"message"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	IsRead      bool       `gorm:"not null;default:false" json:"isRead"`
	TaskID      *uuid.UUID `gorm:"type:uuid" json:"taskId,omitempty"`
	SubtaskID   *uuid.UUID `gorm:"type:uuid" json:"subtaskId,omitempty"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid" json:"workspaceId,omitempty"`
	BoardID     *uuid.UUID `gorm:"type:uuid" json:"boardId,omitempty"`
	ColumnID    *uuid.UUID `gorm:"type:uuid" json:"columnId,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}
