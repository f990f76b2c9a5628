package controllers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vicrm/broadcast"

	"github.com/gin-gonic/gin"
)

type BroadcastContactInput struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type BroadcastInput struct {
	Contacts      []BroadcastContactInput `json:"contacts"`
	Message       string                  `json:"message"`
	ImageBase64   string                  `json:"imageBase64"`
	ImageMimeType string                  `json:"imageMimeType"`
}

// POST /api/broadcast
//
// Responde em text/event-stream: uma linha "data: {json}" por evento
// (start, progress, waiting, done). A validação acontece antes de
// qualquer byte do stream; depois que o stream abre, falha individual
// de envio vira progress status=error, nunca 500.
func Broadcast(c *gin.Context) {
	var input BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "json inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(input.Contacts) == 0 {
		RespondError(c, "contacts é obrigatório", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		RespondError(c, "message é obrigatório", http.StatusBadRequest)
		return
	}

	contacts := make([]broadcast.Contact, 0, len(input.Contacts))
	for _, ct := range input.Contacts {
		phone := strings.TrimSpace(ct.Phone)
		if phone == "" {
			RespondError(c, "contato sem phone", http.StatusBadRequest)
			return
		}
		contacts = append(contacts, broadcast.Contact{Phone: phone, Name: strings.TrimSpace(ct.Name)})
	}

	var image *broadcast.Image
	if strings.TrimSpace(input.ImageBase64) != "" {
		if _, err := base64.StdEncoding.DecodeString(input.ImageBase64); err != nil {
			RespondError(c, "imageBase64 inválido", http.StatusBadRequest)
			return
		}
		image = &broadcast.Image{Base64: input.ImageBase64, MimeType: input.ImageMimeType}
	}

	sender := senderInstance(c)
	if sender == nil {
		RespondError(c, "gateway não configurado", http.StatusInternalServerError)
		return
	}

	engine := &broadcast.Engine{
		Sender:   sender,
		MinDelay: time.Duration(conf.Broadcast.MinDelayMs) * time.Millisecond,
		MaxDelay: time.Duration(conf.Broadcast.MaxDelayMs) * time.Millisecond,
		Timeout:  time.Duration(conf.Broadcast.TimeoutSeconds) * time.Second,
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	// o contexto do request fecha quando o cliente desconecta;
	// o engine para de enviar na hora
	ctx := c.Request.Context()
	engine.Run(ctx, contacts, input.Message, image, func(ev broadcast.Event) bool {
		if ctx.Err() != nil {
			return false
		}
		b, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", b); err != nil {
			return false
		}
		c.Writer.Flush()
		return true
	})
}
