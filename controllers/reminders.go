package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	dbpkg "vicrm/db"
	"vicrm/models"

	"github.com/gin-gonic/gin"
)

// Lembretes manuais são FollowUps com stage 0 e status "reminder":
// uma lista gerida por humanos que o runner da campanha nunca toca.
// O campo last_error vira o texto da nota.

type ReminderInput struct {
	LeadID         int64  `json:"leadId"`
	ConversationID int64  `json:"conversationId"`
	Note           string `json:"note"`
	ScheduledAt    string `json:"scheduledAt"` // RFC3339, opcional
}

// GET /api/followups/reminders?leadId=
func GetReminders(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Where("stage = 0 AND status = ?", models.FOLLOWUP_STATUS_REMINDER)
	if v := strings.TrimSpace(c.Query("leadId")); v != "" {
		leadID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || leadID <= 0 {
			RespondError(c, "leadId inválido", http.StatusBadRequest)
			return
		}
		query = query.Where("lead_id = ?", leadID)
	}

	var reminders []models.FollowUp
	if err := query.Order("scheduled_at asc, id asc").Limit(200).Find(&reminders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"reminders": reminders})
}

// POST /api/followups/reminders
func CreateReminder(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input ReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.LeadID <= 0 {
		RespondError(c, "leadId é obrigatório", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(input.Note) == "" {
		RespondError(c, "note é obrigatório", http.StatusBadRequest)
		return
	}

	reminder := models.FollowUp{
		LeadID:         input.LeadID,
		ConversationID: input.ConversationID,
		Stage:          0,
		Status:         models.FOLLOWUP_STATUS_REMINDER,
		LastError:      strings.TrimSpace(input.Note),
	}
	if v := strings.TrimSpace(input.ScheduledAt); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(c, "scheduledAt inválido (use RFC3339)", http.StatusBadRequest)
			return
		}
		reminder.ScheduledAt = &at
	}

	if err := db.Create(&reminder).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "reminder": reminder})
}

// PUT /api/followups/reminders/:id
func UpdateReminder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var reminder models.FollowUp
	if err := db.Where("id = ? AND stage = 0 AND status = ?", id, models.FOLLOWUP_STATUS_REMINDER).
		First(&reminder).Error; err != nil {
		RespondError(c, "lembrete não encontrado", http.StatusNotFound)
		return
	}

	var input ReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if strings.TrimSpace(input.Note) != "" {
		updates["last_error"] = strings.TrimSpace(input.Note)
	}
	if v := strings.TrimSpace(input.ScheduledAt); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(c, "scheduledAt inválido (use RFC3339)", http.StatusBadRequest)
			return
		}
		updates["scheduled_at"] = &at
	}
	if len(updates) == 0 {
		RespondError(c, "nada para atualizar", http.StatusBadRequest)
		return
	}

	if err := db.Model(&reminder).Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "reminder": reminder})
}

// DELETE /api/followups/reminders/:id
func DeleteReminder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	res := db.Where("id = ? AND stage = 0 AND status = ?", id, models.FOLLOWUP_STATUS_REMINDER).
		Delete(&models.FollowUp{})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, "lembrete não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}
