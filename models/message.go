package models

import "time"

/************************************************
/**** MARK: MESSAGE DIRECTION ****/
/************************************************/
const MESSAGE_DIRECTION_IN = "in"
const MESSAGE_DIRECTION_OUT = "out"

// Message é uma mensagem do histórico de uma conversa.
// SentAt marca o momento em que o gateway aceitou o envio
// (mensagens inbound usam o horário de chegada do webhook).
type Message struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ConversationID int64      `gorm:"not null;index" json:"conversation_id"`
	LeadID         int64      `gorm:"not null;index" json:"lead_id"`
	Direction      string     `gorm:"not null" json:"direction"`
	Content        string     `gorm:"type:text" json:"content"`
	MediaType      string     `gorm:"default:''" json:"media_type"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
