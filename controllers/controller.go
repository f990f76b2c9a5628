package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"vicrm/config"
	dbpkg "vicrm/db"
	"vicrm/models"
	"vicrm/tools"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" é obrigatório", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, name+" inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// MessageSender é o contrato do gateway visto pelos controllers.
type MessageSender interface {
	SendText(ctx context.Context, number string, text string) error
	SendMedia(ctx context.Context, number, mediaType, mediaBase64, mimeType, caption string) error
}

var conf config.Configuration
var messageSender MessageSender

func SetConfigurations(cfg config.Configuration) {
	conf = cfg
}

// SetMessageSender troca o gateway (testes injetam um fake aqui).
func SetMessageSender(s MessageSender) {
	messageSender = s
}

// senderInstance resolve o gateway por operação: fake injetado > settings
// do banco > config. Nil quando não há base_url configurada.
func senderInstance(c *gin.Context) MessageSender {
	if messageSender != nil {
		return messageSender
	}

	client := tools.EvolutionClient{
		BaseURL:  conf.Evolution.BaseURL,
		ApiKey:   conf.Evolution.ApiKey,
		Instance: conf.Evolution.Instance,
	}
	if db := dbpkg.DBInstance(c); db != nil {
		if v := models.GetSetting(db, models.SETTING_EVOLUTION_BASE_URL); v != "" {
			client.BaseURL = v
		}
		if v := models.GetSetting(db, models.SETTING_EVOLUTION_API_KEY); v != "" {
			client.ApiKey = v
		}
		if v := models.GetSetting(db, models.SETTING_EVOLUTION_INSTANCE); v != "" {
			client.Instance = v
		}
	}
	if strings.TrimSpace(client.BaseURL) == "" {
		return nil
	}
	return client
}
