package models

import "time"

/************************************************
/**** MARK: LEAD STATUS ****/
/************************************************/
const LEAD_STATUS_NEW = "new"
const LEAD_STATUS_IN_PROGRESS = "in_progress"
const LEAD_STATUS_AWAITING_RESPONSE = "awaiting_response"
const LEAD_STATUS_CONVERTED = "converted"
const LEAD_STATUS_LOST = "lost"

/************************************************
/**** MARK: LEAD OWNER ****/
/************************************************/
const LEAD_OWNER_BOT = "bot"
const LEAD_OWNER_HUMAN = "human"

// Lead representa um contato no funil de vendas/atendimento.
// OwnerType diz quem responde a conversa no momento (Vi ou um humano).
// ExternalRef guarda a referência do lead no provedor de pagamento (Asaas).
type Lead struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name        string     `gorm:"default:''" json:"name"`
	Phone       string     `gorm:"not null;unique_index" json:"phone"`
	Status      string     `gorm:"not null;default:'new';index" json:"status"`
	OwnerType   string     `gorm:"not null;default:'bot'" json:"owner_type"`
	ExternalRef string     `gorm:"default:''" json:"external_ref"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// ValidLeadStatus confere se o status é um dos conhecidos.
func ValidLeadStatus(s string) bool {
	switch s {
	case LEAD_STATUS_NEW, LEAD_STATUS_IN_PROGRESS, LEAD_STATUS_AWAITING_RESPONSE,
		LEAD_STATUS_CONVERTED, LEAD_STATUS_LOST:
		return true
	}
	return false
}
