package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkLog status enum constants
const (
	StatusNormal    = "Normal"
	StatusWaiting   = "Waiting"
	StatusCancelled = "Cancelled"
)

// WorkLog is one dispatch record: a job performed on a date, for a client,
// by zero or more workers. All monetary fields are settlement snapshots
// written by the engine at create/edit time; later rate-card changes never
// rewrite history.
type WorkLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date       string    `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	StartTime  string    `gorm:"type:varchar(5)" json:"start_time"`           // HH:mm
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client     *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	RateID     uuid.UUID `gorm:"type:uuid;not null" json:"rate_id"`
	VolumeType string    `gorm:"type:varchar(50);not null" json:"volume_type"` // snapshot of the rate's label

	Status     string          `gorm:"type:varchar(20);not null;default:'Normal';index" json:"status"`
	StatusRate decimal.Decimal `gorm:"type:decimal(4,2);not null;default:0" json:"status_rate"` // meaningful only when Status != Normal

	// Operator-supplied flat figures replacing the formula (Waiting/Cancelled only).
	ManualBilledAmount *int64 `json:"manual_billed_amount"` // VAT inclusive
	ManualWorkerPay    *int64 `json:"manual_worker_pay"`    // flat per-head amount

	// Engine snapshots, KRW.
	UnitPrice             int64 `gorm:"not null;default:0" json:"unit_price"` // default per-worker payout
	TotalPaymentToWorkers int64 `gorm:"not null;default:0" json:"total_payment_to_workers"`
	PreTaxBillable        int64 `gorm:"not null;default:0" json:"pre_tax_billable"`
	BillableAmount        int64 `gorm:"not null;default:0" json:"billable_amount"` // VAT inclusive

	IsTaxFree       bool `gorm:"default:false" json:"is_tax_free"` // snapshot from client, independently editable
	IsPaidByClient  bool `gorm:"default:false;index" json:"is_paid_by_client"`
	IsPaidToWorkers bool `gorm:"default:false;index" json:"is_paid_to_workers"`

	Notes          string                 `gorm:"type:text" json:"notes"`
	TeamID         uuid.UUID              `gorm:"type:uuid;not null;index" json:"team_id"`
	Team           *Team                  `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Participations []WorkLogParticipation `gorm:"foreignKey:WorkLogID;constraint:OnDelete:CASCADE" json:"participations"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// WorkLogParticipation assigns one worker to one work log. Payment is an
// explicit per-worker override; NULL means the record's UnitPrice applies.
type WorkLogParticipation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkLogID uuid.UUID `gorm:"type:uuid;not null;index" json:"work_log_id"`
	WorkerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	Worker    *Worker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Payment   *int64    `json:"payment"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkerIDs returns the assigned worker ids in participation order.
func (l *WorkLog) WorkerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.Participations))
	for _, p := range l.Participations {
		ids = append(ids, p.WorkerID)
	}
	return ids
}

// PaymentFor returns the amount actually owed to one participant: the
// explicit override when present, else the record's default per-worker pay.
func (l *WorkLog) PaymentFor(p WorkLogParticipation) int64 {
	if p.Payment != nil {
		return *p.Payment
	}
	return l.UnitPrice
}
