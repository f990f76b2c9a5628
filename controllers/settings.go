package controllers

import (
	"net/http"
	"strings"

	dbpkg "vicrm/db"
	"vicrm/models"

	"github.com/gin-gonic/gin"
)

type SettingInput struct {
	Value string `json:"value"`
}

// GET /api/settings/:key
func GetSettingByKey(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		RespondError(c, "key é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var s models.Setting
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		RespondError(c, "setting não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"setting": s})
}

// PUT /api/settings/:key
//
// Upsert. Chaves evolution_* sobrepõem o config do gateway a partir
// do próximo envio (o client é resolvido por operação).
func PutSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		RespondError(c, "key é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var input SettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := models.SetSetting(db, key, input.Value); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"ok": true})
}
