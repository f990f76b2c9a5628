package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"vicrm/config"
	"vicrm/controllers"
	dbpkg "vicrm/db"
	"vicrm/router"
	"vicrm/tools"
	"vicrm/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env é opcional; em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	cfg := config.Get(getenv("CONFIG_PATH", "config.json"))

	dbpkg.SetConfigurations(cfg)
	database, err := dbpkg.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	controllers.SetConfigurations(cfg)

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	router.Initialize(r, cfg)

	// runner interno de follow-ups (o endpoint /api/followups/run
	// continua disponível para cron externo)
	if spec := strings.TrimSpace(cfg.FollowUps.Cron); spec != "" {
		sender := tools.EvolutionClient{
			BaseURL:  cfg.Evolution.BaseURL,
			ApiKey:   cfg.Evolution.ApiKey,
			Instance: cfg.Evolution.Instance,
		}
		if _, err := workers.StartFollowUpProcessor(database, sender, spec); err != nil {
			log.Fatal(err)
		}
		log.Printf("FollowUp processor scheduled: %s", spec)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Vi backend listening on :%s", cfg.ApiPort)
	log.Fatal(srv.ListenAndServe())
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
