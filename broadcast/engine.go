package broadcast

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Sender é o gateway de saída usado pelo engine.
type Sender interface {
	SendText(ctx context.Context, number string, text string) error
	SendMedia(ctx context.Context, number, mediaType, mediaBase64, mimeType, caption string) error
}

// Contact é um destinatário do disparo. Só o telefone é obrigatório.
type Contact struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

// Image é a mídia opcional do disparo, já em base64.
type Image struct {
	Base64   string
	MimeType string
}

/************************************************
/**** MARK: EVENT TYPES ****/
/************************************************/
const EVENT_START = "start"
const EVENT_PROGRESS = "progress"
const EVENT_WAITING = "waiting"
const EVENT_DONE = "done"

const STATUS_OK = "ok"
const STATUS_ERROR = "error"

// Event é uma linha do stream de progresso. Os campos preenchidos
// dependem do tipo: start {job_id,total}, progress {index,total,sent,
// failed,contact,status[,error]}, waiting {delay_ms}, done {sent,
// failed,total}.
type Event struct {
	Type    string   `json:"type"`
	JobID   string   `json:"job_id,omitempty"`
	Total   int      `json:"total,omitempty"`
	Index   int      `json:"index,omitempty"`
	Sent    int      `json:"sent,omitempty"`
	Failed  int      `json:"failed,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
	Status  string   `json:"status,omitempty"`
	Error   string   `json:"error,omitempty"`
	DelayMs int64    `json:"delay_ms,omitempty"`
}

// Summary fecha a conta do job: Sent + Failed == Total sempre que o
// loop chega ao fim sem cancelamento.
type Summary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Engine dispara uma lista de contatos, um por vez, com delay aleatório
// entre envios para não tomar bloqueio do provedor. Cada invocação é
// independente: o engine não guarda estado entre jobs.
type Engine struct {
	Sender Sender

	// Janela do delay entre envios; zero usa 10s..30s.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Teto operacional do job inteiro; zero usa 5 minutos. Com 100+
	// contatos e até 30s de espera cada, o teto corta jobs esquecidos,
	// não é parte da lógica por mensagem.
	Timeout time.Duration
}

const defaultMinDelay = 10 * time.Second
const defaultMaxDelay = 30 * time.Second
const defaultTimeout = 5 * time.Minute

// Run percorre a lista embaralhada emitindo eventos via emit.
// emit devolve false quando o consumidor foi embora; o loop para na
// hora e nenhum envio novo acontece. Falha de envio individual nunca
// aborta o lote: vira um progress status=error e a vida segue.
func (e *Engine) Run(ctx context.Context, contacts []Contact, message string, image *Image, emit func(Event) bool) Summary {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// embaralha uma cópia (Fisher-Yates); a lista do caller fica intacta
	list := make([]Contact, len(contacts))
	copy(list, contacts)
	rand.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})

	total := len(list)
	sent, failed := 0, 0
	jobID := uuid.NewString()

	if !emit(Event{Type: EVENT_START, JobID: jobID, Total: total}) {
		return Summary{Sent: sent, Failed: failed, Total: total}
	}

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}

		contact := list[i]
		ev := Event{Type: EVENT_PROGRESS, Index: i + 1, Total: total, Contact: &contact}

		if err := e.send(ctx, contact, message, image); err != nil {
			failed++
			ev.Status = STATUS_ERROR
			ev.Error = err.Error()
		} else {
			sent++
			ev.Status = STATUS_OK
		}
		ev.Sent, ev.Failed = sent, failed

		if !emit(ev) {
			return Summary{Sent: sent, Failed: failed, Total: total}
		}

		if i < total-1 {
			delay := e.randomDelay()
			if !emit(Event{Type: EVENT_WAITING, DelayMs: delay.Milliseconds()}) {
				return Summary{Sent: sent, Failed: failed, Total: total}
			}
			if !sleep(ctx, delay) {
				break
			}
		}
	}

	emit(Event{Type: EVENT_DONE, Sent: sent, Failed: failed, Total: total})
	return Summary{Sent: sent, Failed: failed, Total: total}
}

func (e *Engine) send(ctx context.Context, c Contact, message string, image *Image) error {
	if image != nil && image.Base64 != "" {
		return e.Sender.SendMedia(ctx, c.Phone, "image", image.Base64, image.MimeType, message)
	}
	return e.Sender.SendText(ctx, c.Phone, message)
}

// randomDelay sorteia um valor uniforme em [MinDelay, MaxDelay].
func (e *Engine) randomDelay() time.Duration {
	min, max := e.MinDelay, e.MaxDelay
	if min <= 0 {
		min = defaultMinDelay
	}
	if max <= 0 {
		max = defaultMaxDelay
	}
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// sleep espera d respeitando cancelamento; false se o contexto caiu.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
