package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamAll is the sentinel team filter meaning "every team" (global view).
const TeamAll = "ALL"

// Team is the tenant unit: clients, workers and work logs all belong to one team.
type Team struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
