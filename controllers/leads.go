package controllers

import (
	"net/http"
	"strings"

	dbpkg "vicrm/db"
	"vicrm/models"
	"vicrm/tools"

	"github.com/gin-gonic/gin"
)

type LeadInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type LeadStatusInput struct {
	Status string `json:"status"`
}

type HandoffInput struct {
	OwnerType string `json:"ownerType"`
}

// GET /api/leads?status=
func GetLeads(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("id desc").Limit(200)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !models.ValidLeadStatus(status) {
			RespondError(c, "status inválido", http.StatusBadRequest)
			return
		}
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"leads": leads})
}

// GET /api/leads/:id
func GetLeadByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var lead models.Lead
	if err := db.First(&lead, id).Error; err != nil {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	var tags []models.Tag
	db.Joins("JOIN lead_tags ON lead_tags.tag_id = tags.id").
		Where("lead_tags.lead_id = ?", lead.ID).
		Find(&tags)

	RespondSuccess(c, gin.H{"lead": lead, "tags": tags})
}

// POST /api/leads
func CreateLead(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	phone, err := tools.NormalizePhone(input.Phone)
	if err != nil {
		RespondError(c, "phone inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	lead := models.Lead{
		Name:      strings.TrimSpace(input.Name),
		Phone:     phone,
		Status:    models.LEAD_STATUS_NEW,
		OwnerType: models.LEAD_OWNER_BOT,
	}
	if err := db.Create(&lead).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "lead": lead})
}

// PUT /api/leads/:id/status
//
// O status do lead é last-write-wins por política: o operador pode
// sobrescrever o "awaiting_response" do scheduler a qualquer momento.
func UpdateLeadStatus(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input LeadStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !models.ValidLeadStatus(input.Status) {
		RespondError(c, "status inválido", http.StatusBadRequest)
		return
	}

	res := db.Model(&models.Lead{}).Where("id = ?", id).Update("status", input.Status)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}

// POST /api/leads/:id/handoff
//
// Troca quem responde a conversa (Vi <-> humano).
func HandoffLead(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input HandoffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.OwnerType != models.LEAD_OWNER_BOT && input.OwnerType != models.LEAD_OWNER_HUMAN {
		RespondError(c, "ownerType deve ser bot ou human", http.StatusBadRequest)
		return
	}

	res := db.Model(&models.Lead{}).Where("id = ?", id).Update("owner_type", input.OwnerType)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}
