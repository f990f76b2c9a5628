package config

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	// Gateway de mensagens (Evolution API). Os valores podem ser
	// sobrepostos por Settings no banco, resolvidos a cada envio.
	Evolution struct {
		BaseURL  string `json:"base_url"`
		ApiKey   string `json:"api_key"`
		Instance string `json:"instance"`
	} `json:"evolution"`

	// Disparo em massa: janela do delay aleatório entre envios e teto
	// operacional do job inteiro.
	Broadcast struct {
		MinDelayMs     int `json:"min_delay_ms"`
		MaxDelayMs     int `json:"max_delay_ms"`
		TimeoutSeconds int `json:"timeout_seconds"`
	} `json:"broadcast"`

	// Gatilho interno do runner de follow-ups (formato robfig/cron,
	// ex: "@every 1m"). Vazio desliga; o endpoint HTTP continua valendo.
	FollowUps struct {
		Cron string `json:"cron"`
	} `json:"followups"`

	Security struct {
		ApiKey          string `json:"api_key"`           // vazio = aberto (dev)
		AsaasWebhookKey string `json:"asaas_webhook_key"` // valida asaas-access-token
	} `json:"security"`
}

func Get(path string) Configuration {
	var c Configuration

	b, err := os.ReadFile(path)
	if err != nil {
		// config.json é opcional: env pode suprir tudo
		log.Printf("config: %s não encontrado, usando defaults + env", path)
	} else if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Broadcast.MinDelayMs <= 0 {
		c.Broadcast.MinDelayMs = 10000
	}
	if c.Broadcast.MaxDelayMs <= 0 {
		c.Broadcast.MaxDelayMs = 30000
	}
	if c.Broadcast.TimeoutSeconds <= 0 {
		c.Broadcast.TimeoutSeconds = 300
	}

	// env tem prioridade sobre o arquivo (credenciais nunca vão pro json)
	if v := getenv("EVOLUTION_API_URL"); v != "" {
		c.Evolution.BaseURL = v
	}
	if v := getenv("EVOLUTION_API_KEY"); v != "" {
		c.Evolution.ApiKey = v
	}
	if v := getenv("EVOLUTION_INSTANCE"); v != "" {
		c.Evolution.Instance = v
	}
	if v := getenv("API_KEY"); v != "" {
		c.Security.ApiKey = v
	}
	if v := getenv("ASAAS_WEBHOOK_KEY"); v != "" {
		c.Security.AsaasWebhookKey = v
	}

	return c
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
