package workers

import (
	"context"
	"log"
	"time"

	"vicrm/models"

	"github.com/jinzhu/gorm"
	"github.com/robfig/cron/v3"
)

// Sender é o que o runner precisa do gateway.
type Sender interface {
	SendText(ctx context.Context, number string, text string) error
}

// Summary agrega o resultado de uma rodada do runner.
// Erros individuais ficam no LastError de cada FollowUp, não aqui.
type Summary struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}

// Textos de cada etapa da campanha. Etapas acima do máximo reutilizam
// o último texto (clamp, nunca rejeição).
var stageMessages = map[int]string{
	1: "Oi! Aqui é a Vi 😊 Vi que você ficou de pensar sobre o nosso plano de benefícios de saúde. Ficou alguma dúvida que eu possa esclarecer?",
	2: "Oi, tudo bem? Passando de novo por aqui 🙋‍♀️ Muita gente aproveita os descontos em consultas e exames logo na primeira semana. Quer que eu te explique como funciona?",
	3: "Oi! Não quero insistir demais, prometo 🙈 Só queria lembrar que a adesão leva menos de 5 minutos e você já sai com os benefícios ativos. Posso te ajudar com isso?",
	4: "Oi, essa é minha última mensagem por aqui 💙 Se mudar de ideia sobre o plano de benefícios, é só me chamar nesse número. Vou adorar te atender!",
}

const maxStage = 4

// StageMessage devolve o texto da etapa, com clamp no máximo da tabela.
func StageMessage(stage int) string {
	if stage > maxStage {
		stage = maxStage
	}
	if stage < 1 {
		stage = 1
	}
	return stageMessages[stage]
}

// StartFollowUpProcessor agenda rodadas periódicas do runner via cron
// (ex: "@every 1m"). O endpoint HTTP de disparo manual continua valendo;
// os dois convivem porque cada linha é reivindicada antes do envio.
func StartFollowUpProcessor(db *gorm.DB, sender Sender, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := ProcessDueFollowUps(db, sender); err != nil {
			log.Printf("followups worker: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// ProcessDueFollowUps processa até 50 follow-ups de campanha vencidos.
// Lembretes manuais (stage 0) nunca entram aqui.
func ProcessDueFollowUps(db *gorm.DB, sender Sender) (Summary, error) {
	now := time.Now()

	var due []models.FollowUp
	if err := db.
		Where("status = ?", models.FOLLOWUP_STATUS_PENDING).
		Where("stage >= 1").
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("scheduled_at asc, id asc").
		Limit(50).
		Find(&due).Error; err != nil {
		return Summary{}, err
	}

	sum := Summary{Total: len(due)}
	for _, fu := range due {
		// lock otimista: só processa se conseguir mudar o status.
		// Rodadas sobrepostas (cron + manual) não disparam duas vezes.
		res := db.Model(&models.FollowUp{}).
			Where("id = ? AND status = ?", fu.ID, models.FOLLOWUP_STATUS_PENDING).
			Update("status", models.FOLLOWUP_STATUS_PROCESSING)
		if res.Error != nil || res.RowsAffected == 0 {
			// outra rodada levou essa linha; ela não conta como nossa
			sum.Total--
			continue
		}

		if err := processFollowUp(db, sender, fu); err != nil {
			log.Printf("followups worker: follow-up %d: %v", fu.ID, err)
			sum.Errors++
		} else {
			sum.Processed++
		}
	}

	return sum, nil
}

func processFollowUp(db *gorm.DB, sender Sender, fu models.FollowUp) error {
	var lead models.Lead
	if err := db.First(&lead, fu.LeadID).Error; err != nil {
		markFollowUpError(db, fu.ID, "lead não encontrado: "+err.Error())
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	text := StageMessage(fu.Stage)
	if err := sender.SendText(ctx, lead.Phone, text); err != nil {
		markFollowUpError(db, fu.ID, err.Error())
		return err
	}

	// sucesso: histórico + status fecham na mesma transação
	now := time.Now()
	tx := db.Begin()
	if tx.Error != nil {
		markFollowUpError(db, fu.ID, tx.Error.Error())
		return tx.Error
	}

	msg := models.Message{
		ConversationID: fu.ConversationID,
		LeadID:         fu.LeadID,
		Direction:      models.MESSAGE_DIRECTION_OUT,
		Content:        text,
		SentAt:         &now,
	}
	if err := tx.Create(&msg).Error; err != nil {
		tx.Rollback()
		markFollowUpError(db, fu.ID, err.Error())
		return err
	}
	if err := tx.Model(&models.FollowUp{}).
		Where("id = ?", fu.ID).
		Updates(map[string]any{
			"status":     models.FOLLOWUP_STATUS_SENT,
			"last_error": "",
		}).Error; err != nil {
		tx.Rollback()
		markFollowUpError(db, fu.ID, err.Error())
		return err
	}
	if err := tx.Commit().Error; err != nil {
		markFollowUpError(db, fu.ID, err.Error())
		return err
	}

	return nil
}

func markFollowUpError(db *gorm.DB, id int64, desc string) {
	if err := db.Model(&models.FollowUp{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.FOLLOWUP_STATUS_ERROR,
			"last_error": desc,
		}).Error; err != nil {
		log.Printf("followups worker: mark error (%d): %v", id, err)
	}
}
