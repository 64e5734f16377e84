package model

import (
	"time"

	"gorm.io/gorm"
)

// Game is one physical game available for table rental. IsAvailable mirrors
// whether an open session exists; the open-session uniqueness itself is
// enforced by a partial unique index on game_sessions.
type Game struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	MinPlayers  int            `json:"min_players" gorm:"default:1"`
	MaxPlayers  int            `json:"max_players" gorm:"default:4"`
	IsAvailable bool           `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// GameSession is an interval of exclusive use of one physical game at one
// table. At most one session per game may have a null EndedAt.
type GameSession struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	GameID    uint       `json:"game_id" gorm:"index;not null"`
	TableID   uint       `json:"table_id" gorm:"index;not null"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
