package router

import (
	"log"

	"vicrm/config"
	"vicrm/controllers"
	"vicrm/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
// Webhooks ficam fora da chave de API (os provedores não mandam header
// nosso); todo o resto do /api passa pelo APIKeyAuth.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	api := r.Group("/api")

	// Webhooks (gateway de mensagens + pagamento)
	api.POST("/webhook/evolution", Logger(), controllers.EvolutionWebhook)
	api.POST("/webhook/asaas", Logger(), controllers.AsaasWebhook)

	authd := api.Group("")
	authd.Use(middleware.APIKeyAuth(cfg.Security.ApiKey))

	// Disparo em massa (SSE)
	authd.POST("/broadcast", Logger(), controllers.Broadcast)

	// Campanha de follow-ups
	authd.POST("/followups/schedule", Logger(), controllers.ScheduleFollowUps)
	authd.POST("/followups/run", Logger(), controllers.RunFollowUps)

	// Lembretes manuais (stage 0)
	authd.GET("/followups/reminders", Logger(), controllers.GetReminders)
	authd.POST("/followups/reminders", Logger(), controllers.CreateReminder)
	authd.PUT("/followups/reminders/:id", Logger(), controllers.UpdateReminder)
	authd.DELETE("/followups/reminders/:id", Logger(), controllers.DeleteReminder)

	// Leads
	authd.GET("/leads", Logger(), controllers.GetLeads)
	authd.GET("/leads/:id", Logger(), controllers.GetLeadByID)
	authd.POST("/leads", Logger(), controllers.CreateLead)
	authd.PUT("/leads/:id/status", Logger(), controllers.UpdateLeadStatus)
	authd.POST("/leads/:id/handoff", Logger(), controllers.HandoffLead)

	// Histórico + envio avulso
	authd.GET("/leads/:id/messages", Logger(), controllers.GetLeadMessages)
	authd.POST("/messages/send", Logger(), controllers.SendMessage)

	// Tags
	authd.GET("/tags", Logger(), controllers.GetTags)
	authd.POST("/tags", Logger(), controllers.CreateTag)
	authd.PUT("/tags/:id", Logger(), controllers.UpdateTag)
	authd.DELETE("/tags/:id", Logger(), controllers.DeleteTag)
	authd.POST("/leads/:id/tags", Logger(), controllers.AttachTagToLead)
	authd.DELETE("/leads/:id/tags/:tagId", Logger(), controllers.DetachTagFromLead)

	// Settings
	authd.GET("/settings/:key", Logger(), controllers.GetSettingByKey)
	authd.PUT("/settings/:key", Logger(), controllers.PutSetting)

	log.Printf("Routes initialized")
}
