package model

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_boards_workspace_name" json:"name"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_boards_workspace_name" json:"workspaceId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
