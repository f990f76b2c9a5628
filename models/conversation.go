package models

import "time"

const CONVERSATION_CHANNEL_WHATSAPP = "whatsapp"

// Conversation é o fio de mensagens de um lead num canal.
// Hoje só existe o canal whatsapp, mas o campo fica para o dia
// em que o funil ganhar outros canais.
type Conversation struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID        int64      `gorm:"not null;index" json:"lead_id"`
	Channel       string     `gorm:"not null;default:'whatsapp'" json:"channel"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}
