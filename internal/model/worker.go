package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkillLevel enum constants
const (
	SkillNovice       = "Novice"
	SkillIntermediate = "Intermediate"
	SkillExpert       = "Expert"
	SkillSpecialist   = "Specialist"
)

// WorkerStatus enum constants
const (
	WorkerActive   = "Active"
	WorkerInactive = "Inactive"
)

// Worker represents a dispatchable worker on the agency's roster.
type Worker struct {
	ID                         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                       string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone                      string         `gorm:"type:varchar(50);not null" json:"phone"`
	Address                    string         `gorm:"type:varchar(255)" json:"address"`
	BankName                   string         `gorm:"type:varchar(100)" json:"bank_name"`
	BankAccount                string         `gorm:"type:varchar(100)" json:"bank_account"`
	SkillLevel                 string         `gorm:"type:varchar(20);not null;default:'Novice'" json:"skill_level"`
	ContractType               string         `gorm:"type:varchar(50)" json:"contract_type"`
	BusinessRegistrationNumber string         `gorm:"type:varchar(50)" json:"business_registration_number"`
	Status                     string         `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	Notes                      string         `gorm:"type:text" json:"notes"`
	TeamID                     uuid.UUID      `gorm:"type:uuid;not null;index" json:"team_id"`
	Team                       *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
	DeletedAt                  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsBusinessRegistered reports whether the worker invoices the agency with
// tax. Registered workers get a 10% VAT gross-up on reported earnings.
// Always read from the current row, not from settlement snapshots, so a
// late registration correction fixes past reports too.
func (w *Worker) IsBusinessRegistered() bool {
	return w.BusinessRegistrationNumber != ""
}
