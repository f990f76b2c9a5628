package controllers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	dbpkg "vicrm/db"
	"vicrm/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// EvolutionWebhookPayload cobre o evento messages.upsert da Evolution.
// Só os campos que o CRM usa; o resto do payload é ignorado.
type EvolutionWebhookPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Data     struct {
		Key struct {
			RemoteJid string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
			ID        string `json:"id"`
		} `json:"key"`
		PushName string `json:"pushName"`
		Message  struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"data"`
}

// POST /api/webhook/evolution
//
// Mensagem inbound: garante lead + conversa, grava no histórico e
// cancela a campanha pendente (o lead respondeu, acabou o motivo
// dos nudges).
func EvolutionWebhook(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var payload EvolutionWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	if payload.Event != "messages.upsert" || payload.Data.Key.FromMe {
		RespondSuccess(c, gin.H{"ok": true, "ignored": true})
		return
	}

	phone := strings.SplitN(payload.Data.Key.RemoteJid, "@", 2)[0]
	text := strings.TrimSpace(payload.Data.Message.Conversation)
	if text == "" {
		text = strings.TrimSpace(payload.Data.Message.ExtendedTextMessage.Text)
	}
	if phone == "" || text == "" {
		RespondSuccess(c, gin.H{"ok": true, "ignored": true})
		return
	}

	var lead models.Lead
	err := db.Where("phone = ?", phone).First(&lead).Error
	if gorm.IsRecordNotFoundError(err) {
		lead = models.Lead{
			Name:      strings.TrimSpace(payload.Data.PushName),
			Phone:     phone,
			Status:    models.LEAD_STATUS_NEW,
			OwnerType: models.LEAD_OWNER_BOT,
		}
		if err := db.Create(&lead).Error; err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	conv, err := findOrCreateConversation(db, lead.ID)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	msg := models.Message{
		ConversationID: conv.ID,
		LeadID:         lead.ID,
		Direction:      models.MESSAGE_DIRECTION_IN,
		Content:        text,
		SentAt:         &now,
	}
	if err := db.Create(&msg).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := db.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Update("last_message_at", &now).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	// lead respondeu: a campanha pendente morre aqui
	if err := db.Model(&models.FollowUp{}).
		Where("lead_id = ? AND status = ? AND stage >= 1", lead.ID, models.FOLLOWUP_STATUS_PENDING).
		Update("status", models.FOLLOWUP_STATUS_CANCELED).Error; err != nil {
		log.Printf("webhook evolution: cancel campaign (%d): %v", lead.ID, err)
	}
	if lead.Status == models.LEAD_STATUS_AWAITING_RESPONSE {
		if err := db.Model(&models.Lead{}).
			Where("id = ?", lead.ID).
			Update("status", models.LEAD_STATUS_IN_PROGRESS).Error; err != nil {
			log.Printf("webhook evolution: update lead status (%d): %v", lead.ID, err)
		}
	}

	RespondSuccess(c, gin.H{"ok": true})
}

// AsaasWebhookPayload cobre os eventos de pagamento que interessam.
type AsaasWebhookPayload struct {
	Event   string `json:"event"`
	Payment struct {
		ID                string  `json:"id"`
		Customer          string  `json:"customer"`
		Value             float64 `json:"value"`
		ExternalReference string  `json:"externalReference"`
	} `json:"payment"`
}

// POST /api/webhook/asaas
//
// Pagamento confirmado converte o lead (externalReference carrega o id
// do lead, gravado na hora de gerar a cobrança).
func AsaasWebhook(c *gin.Context) {
	if key := strings.TrimSpace(conf.Security.AsaasWebhookKey); key != "" {
		got := strings.TrimSpace(c.GetHeader("asaas-access-token"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			RespondError(c, "token inválido", http.StatusUnauthorized)
			return
		}
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var payload AsaasWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch payload.Event {
	case "PAYMENT_CONFIRMED", "PAYMENT_RECEIVED":
	default:
		RespondSuccess(c, gin.H{"ok": true, "ignored": true})
		return
	}

	leadID, err := strconv.ParseInt(strings.TrimSpace(payload.Payment.ExternalReference), 10, 64)
	if err != nil || leadID <= 0 {
		RespondSuccess(c, gin.H{"ok": true, "ignored": true})
		return
	}

	res := db.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"status":       models.LEAD_STATUS_CONVERTED,
			"external_ref": payload.Payment.Customer,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		RespondSuccess(c, gin.H{"ok": true, "ignored": true})
		return
	}

	// virou cliente: nudges pendentes não fazem mais sentido
	if err := db.Model(&models.FollowUp{}).
		Where("lead_id = ? AND status = ? AND stage >= 1", leadID, models.FOLLOWUP_STATUS_PENDING).
		Update("status", models.FOLLOWUP_STATUS_CANCELED).Error; err != nil {
		log.Printf("webhook asaas: cancel campaign (%d): %v", leadID, err)
	}

	RespondSuccess(c, gin.H{"ok": true})
}
