package models

import "time"

/************************************************
/**** MARK: FOLLOWUP STATUS ****/
/************************************************/
const FOLLOWUP_STATUS_PENDING = "pending"
const FOLLOWUP_STATUS_PROCESSING = "processing"
const FOLLOWUP_STATUS_SENT = "sent"
const FOLLOWUP_STATUS_ERROR = "error"
const FOLLOWUP_STATUS_CANCELED = "canceled"
const FOLLOWUP_STATUS_REMINDER = "reminder"

// Offsets da campanha automática, em horas a partir do agendamento.
// A posição i vira a etapa i+1.
var FollowUpCampaignOffsetHours = []int{24, 48, 72, 120}

// FollowUp é um nudge agendado para um lead que parou de responder,
// ou um lembrete manual criado por um operador.
//
// Stage 0 = lembrete manual (status "reminder", nunca tocado pelo runner;
// LastError carrega o texto da nota). Stage 1..4 = etapa da campanha.
//
// Ciclo da campanha: pending -> processing (claim do runner) -> sent | error.
// "canceled" entra quando o lead responde antes do disparo.
type FollowUp struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID         int64      `gorm:"not null;index" json:"lead_id"`
	ConversationID int64      `gorm:"not null;index" json:"conversation_id"`
	Stage          int        `gorm:"not null;default:0" json:"stage"`
	ScheduledAt    *time.Time `gorm:"index" json:"scheduled_at"`
	Status         string     `gorm:"not null;default:'pending';index" json:"status"`
	LastError      string     `gorm:"type:text" json:"last_error"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
