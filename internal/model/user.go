package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName  string    `gorm:"not null" json:"userName"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// UserRef is the public projection of a user attached to tasks and comments.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Avatar   *string   `json:"avatar,omitempty"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, UserName: u.UserName, Avatar: u.Avatar}
}
