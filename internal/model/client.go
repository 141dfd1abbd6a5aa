package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayMode enum constants
const (
	PayModeIndividual = "INDIVIDUAL" // rate.unit_amount is a per-head worker cost, fee_amount a per-head fee
	PayModeTotal      = "TOTAL"      // rate.unit_amount is the whole-job price, fee_amount the whole-job fee
)

// Client represents a client site the agency dispatches workers to.
// FeeAmount and the meaning of each rate's UnitAmount depend on PayMode.
type Client struct {
	ID                         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                       string         `gorm:"type:varchar(255);not null" json:"name"`
	Address                    string         `gorm:"type:varchar(255)" json:"address"`
	Manager                    string         `gorm:"type:varchar(255)" json:"manager"`
	ContactInfo                string         `gorm:"type:varchar(100)" json:"contact_info"`
	FeeAmount                  int64          `gorm:"not null;default:0" json:"fee_amount"` // KRW
	PayMode                    string         `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"pay_mode"`
	IsTaxFree                  bool           `gorm:"default:false" json:"is_tax_free"`
	TaxInvoiceEmail            string         `gorm:"type:varchar(255)" json:"tax_invoice_email"`
	BusinessRegistrationNumber string         `gorm:"type:varchar(50)" json:"business_registration_number"`
	IsActive                   bool           `gorm:"default:true" json:"is_active"`
	TeamID                     uuid.UUID      `gorm:"type:uuid;not null;index" json:"team_id"`
	Team                       *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Rates                      []Rate         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"rates"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
	DeletedAt                  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Rate is one job-type price entry on a client's rate card.
// StandardHeadcount is the crew size the price assumes; zero is a legal
// transient state (rate created before the headcount is known).
type Rate struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID          uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	VolumeType        string    `gorm:"type:varchar(50);not null" json:"volume_type"` // 20ft, 40ft, Time, Other, ...
	StandardHeadcount int       `gorm:"not null;default:0" json:"standard_headcount"`
	UnitAmount        int64     `gorm:"not null;default:0" json:"unit_amount"` // KRW; per-head or whole-job per PayMode
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
