package models

import "time"

// Student represents a learner registered for examinations. Rows are
// reference data owned by the import tooling; the engine only reads them.
type Student struct {
	NIS       string    `gorm:"primaryKey;size:32" json:"nis"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Grade     string    `gorm:"size:8;not null;index" json:"grade"`
	Class     string    `gorm:"size:8;not null" json:"class"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomRoster assigns a student to a physical or virtual exam room.
type RoomRoster struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Room string `gorm:"size:16;not null;uniqueIndex:idx_roster_room_nis" json:"room"`
	NIS  string `gorm:"size:32;not null;uniqueIndex:idx_roster_room_nis" json:"nis"`
}

// Teacher represents a staff member that can open the proctor dashboard.
type Teacher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
