package model

import (
	"github.com/google/uuid"
)

// DefaultColumnName labels the column auto-provisioned for new tasks.
const DefaultColumnName = "to do"

// ColumnName is a label shared by columns across boards.
type ColumnName struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`
}

type Column struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoardID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_columns_board_name" json:"boardId"`
	ColumnNameID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_columns_board_name" json:"columnNameId"`
	Order        int       `gorm:"column:position;not null" json:"order"`

	// Name is read through a join on column_names.
	Name string `gorm:"->;-:migration" json:"name"`
}

// ColumnStat is the number of tasks currently placed in a column.
type ColumnStat struct {
	ColumnID   uuid.UUID `json:"columnId"`
	ColumnName string    `json:"columnName"`
	Count      int64     `json:"count"`
}
