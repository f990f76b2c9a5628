package controllers

import (
	"net/http"
	"time"

	dbpkg "vicrm/db"
	"vicrm/models"
	"vicrm/workers"

	"github.com/gin-gonic/gin"
)

type ScheduleFollowUpsInput struct {
	LeadID         int64 `json:"leadId"`
	ConversationID int64 `json:"conversationId"`
}

// POST /api/followups/schedule
//
// Garante a campanha de 4 etapas para o lead, de forma idempotente:
// se já existe etapa pendente, não cria nada e responde
// "already scheduled". A criação do lote é atômica (4 linhas ou nada).
func ScheduleFollowUps(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input ScheduleFollowUpsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.LeadID <= 0 {
		RespondError(c, "leadId é obrigatório", http.StatusBadRequest)
		return
	}
	if input.ConversationID <= 0 {
		RespondError(c, "conversationId é obrigatório", http.StatusBadRequest)
		return
	}

	// idempotência: uma campanha ativa por lead
	var pending int
	if err := db.Model(&models.FollowUp{}).
		Where("lead_id = ? AND status = ? AND stage >= 1", input.LeadID, models.FOLLOWUP_STATUS_PENDING).
		Count(&pending).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if pending > 0 {
		RespondSuccess(c, gin.H{"ok": true, "message": "already scheduled"})
		return
	}

	now := time.Now()
	tx := db.Begin()
	if tx.Error != nil {
		RespondError(c, tx.Error.Error(), http.StatusInternalServerError)
		return
	}

	if err := tx.Model(&models.Lead{}).
		Where("id = ?", input.LeadID).
		Update("status", models.LEAD_STATUS_AWAITING_RESPONSE).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	for i, hours := range models.FollowUpCampaignOffsetHours {
		at := now.Add(time.Duration(hours) * time.Hour)
		fu := models.FollowUp{
			LeadID:         input.LeadID,
			ConversationID: input.ConversationID,
			Stage:          i + 1,
			ScheduledAt:    &at,
			Status:         models.FOLLOWUP_STATUS_PENDING,
		}
		if err := tx.Create(&fu).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "scheduled": len(models.FollowUpCampaignOffsetHours)})
}

// POST /api/followups/run
//
// Gatilho manual/externo do runner: processa os follow-ups vencidos
// agora e devolve só os agregados. Erros individuais ficam no
// last_error de cada linha.
func RunFollowUps(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	sender := senderInstance(c)
	if sender == nil {
		RespondError(c, "gateway não configurado", http.StatusInternalServerError)
		return
	}

	sum, err := workers.ProcessDueFollowUps(db, sender)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{
		"ok":        true,
		"processed": sum.Processed,
		"errors":    sum.Errors,
		"total":     sum.Total,
	})
}
