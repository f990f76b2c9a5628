package controllers

import (
	"net/http"
	"strings"
	"time"

	dbpkg "vicrm/db"
	"vicrm/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type SendMessageInput struct {
	LeadID int64  `json:"leadId"`
	Text   string `json:"text"`
}

// GET /api/leads/:id/messages
func GetLeadMessages(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var messages []models.Message
	if err := db.Where("lead_id = ?", id).
		Order("id asc").
		Limit(500).
		Find(&messages).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"messages": messages})
}

// POST /api/messages/send
//
// Envio avulso de um operador. Diferente do broadcast, aqui a mensagem
// entra no histórico da conversa.
func SendMessage(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.LeadID <= 0 {
		RespondError(c, "leadId é obrigatório", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		RespondError(c, "text é obrigatório", http.StatusBadRequest)
		return
	}

	var lead models.Lead
	if err := db.First(&lead, input.LeadID).Error; err != nil {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	sender := senderInstance(c)
	if sender == nil {
		RespondError(c, "gateway não configurado", http.StatusInternalServerError)
		return
	}

	if err := sender.SendText(c.Request.Context(), lead.Phone, text); err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
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
		Direction:      models.MESSAGE_DIRECTION_OUT,
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

	RespondSuccess(c, gin.H{"ok": true, "message": msg})
}

// findOrCreateConversation devolve a conversa whatsapp do lead,
// criando se for a primeira mensagem.
func findOrCreateConversation(db *gorm.DB, leadID int64) (*models.Conversation, error) {
	var conv models.Conversation
	err := db.Where("lead_id = ? AND channel = ?", leadID, models.CONVERSATION_CHANNEL_WHATSAPP).
		First(&conv).Error
	if gorm.IsRecordNotFoundError(err) {
		conv = models.Conversation{LeadID: leadID, Channel: models.CONVERSATION_CHANNEL_WHATSAPP}
		if err := db.Create(&conv).Error; err != nil {
			return nil, err
		}
		return &conv, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
