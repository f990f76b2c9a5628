package controllers

import (
	"net/http"
	"strings"

	dbpkg "vicrm/db"
	"vicrm/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type LeadTagInput struct {
	TagID int64 `json:"tagId"`
}

// GET /api/tags
func GetTags(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var tags []models.Tag
	if err := db.Order("name asc").Find(&tags).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"tags": tags})
}

// POST /api/tags
func CreateTag(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		RespondError(c, "name é obrigatório", http.StatusBadRequest)
		return
	}

	tag := models.Tag{Name: name, Color: strings.TrimSpace(input.Color)}
	if err := db.Create(&tag).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "tag": tag})
}

// PUT /api/tags/:id
func UpdateTag(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var tag models.Tag
	if err := db.First(&tag, id).Error; err != nil {
		RespondError(c, "tag não encontrada", http.StatusNotFound)
		return
	}

	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if v := strings.TrimSpace(input.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(input.Color); v != "" {
		updates["color"] = v
	}
	if len(updates) == 0 {
		RespondError(c, "nada para atualizar", http.StatusBadRequest)
		return
	}

	if err := db.Model(&tag).Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true, "tag": tag})
}

// DELETE /api/tags/:id
func DeleteTag(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		RespondError(c, tx.Error.Error(), http.StatusInternalServerError)
		return
	}
	if err := tx.Where("tag_id = ?", id).Delete(&models.LeadTag{}).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	res := tx.Where("id = ?", id).Delete(&models.Tag{})
	if res.Error != nil {
		tx.Rollback()
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		RespondError(c, "tag não encontrada", http.StatusNotFound)
		return
	}
	if err := tx.Commit().Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}

// POST /api/leads/:id/tags
func AttachTagToLead(c *gin.Context) {
	leadID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input LeadTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.TagID <= 0 {
		RespondError(c, "tagId é obrigatório", http.StatusBadRequest)
		return
	}

	var tag models.Tag
	if err := db.First(&tag, input.TagID).Error; err != nil {
		RespondError(c, "tag não encontrada", http.StatusNotFound)
		return
	}

	// já ligada? não duplica
	var existing models.LeadTag
	err := db.Where("lead_id = ? AND tag_id = ?", leadID, input.TagID).First(&existing).Error
	if err == nil {
		RespondSuccess(c, gin.H{"ok": true})
		return
	}
	if !gorm.IsRecordNotFoundError(err) {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := db.Create(&models.LeadTag{LeadID: leadID, TagID: input.TagID}).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}

// DELETE /api/leads/:id/tags/:tagId
func DetachTagFromLead(c *gin.Context) {
	leadID, ok := ParamID(c, "id")
	if !ok {
		return
	}
	tagID, ok := ParamID(c, "tagId")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := db.Where("lead_id = ? AND tag_id = ?", leadID, tagID).
		Delete(&models.LeadTag{}).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}
