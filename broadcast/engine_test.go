package broadcast

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	mu         sync.Mutex
	texts      []string // telefones que receberam texto
	medias     []string // telefones que receberam mídia
	captions   []string
	failPhones map[string]bool
}

func (f *fakeSender) SendText(ctx context.Context, number, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhones[number] {
		return errors.New("gateway recusou o envio")
	}
	f.texts = append(f.texts, number)
	return nil
}

func (f *fakeSender) SendMedia(ctx context.Context, number, mediaType, mediaBase64, mimeType, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhones[number] {
		return errors.New("gateway recusou o envio")
	}
	f.medias = append(f.medias, number)
	f.captions = append(f.captions, caption)
	return nil
}

func fastEngine(s Sender) *Engine {
	return &Engine{
		Sender:   s,
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

func collectEvents(e *Engine, contacts []Contact, message string, image *Image) ([]Event, Summary) {
	var events []Event
	sum := e.Run(context.Background(), contacts, message, image, func(ev Event) bool {
		events = append(events, ev)
		return true
	})
	return events, sum
}

func countByType(events []Event, typ string) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestRunEventSequence(t *testing.T) {
	sender := &fakeSender{}
	contacts := []Contact{
		{Phone: "5511999990001"},
		{Phone: "5511999990002"},
		{Phone: "5511999990003"},
	}

	events, sum := collectEvents(fastEngine(sender), contacts, "Olá", nil)

	if len(events) == 0 {
		t.Fatal("nenhum evento emitido")
	}
	if events[0].Type != EVENT_START {
		t.Errorf("primeiro evento deveria ser start, veio %s", events[0].Type)
	}
	if events[0].Total != 3 {
		t.Errorf("start.total = %d, esperado 3", events[0].Total)
	}
	if events[0].JobID == "" {
		t.Error("start sem job_id")
	}
	last := events[len(events)-1]
	if last.Type != EVENT_DONE {
		t.Errorf("último evento deveria ser done, veio %s", last.Type)
	}
	if last.Sent != 3 || last.Failed != 0 || last.Total != 3 {
		t.Errorf("done = {sent:%d failed:%d total:%d}, esperado {3,0,3}", last.Sent, last.Failed, last.Total)
	}

	if n := countByType(events, EVENT_START); n != 1 {
		t.Errorf("start emitido %d vezes", n)
	}
	if n := countByType(events, EVENT_PROGRESS); n != 3 {
		t.Errorf("progress emitido %d vezes, esperado 3", n)
	}
	if n := countByType(events, EVENT_WAITING); n != 2 {
		t.Errorf("waiting emitido %d vezes, esperado 2", n)
	}
	if n := countByType(events, EVENT_DONE); n != 1 {
		t.Errorf("done emitido %d vezes", n)
	}

	if sum.Sent != 3 || sum.Failed != 0 || sum.Total != 3 {
		t.Errorf("summary inesperado: %+v", sum)
	}
}

func TestRunPartialFailure(t *testing.T) {
	sender := &fakeSender{failPhones: map[string]bool{"5511999990002": true}}
	contacts := []Contact{
		{Phone: "5511999990001"},
		{Phone: "5511999990002"},
		{Phone: "5511999990003"},
	}

	events, sum := collectEvents(fastEngine(sender), contacts, "Olá", nil)

	if sum.Sent != 2 || sum.Failed != 1 || sum.Total != 3 {
		t.Fatalf("summary = %+v, esperado {2,1,3}", sum)
	}
	if sum.Sent+sum.Failed != sum.Total {
		t.Error("sent + failed != total")
	}

	errorProgress := 0
	for _, ev := range events {
		if ev.Type != EVENT_PROGRESS {
			continue
		}
		if ev.Status == STATUS_ERROR {
			errorProgress++
			if ev.Error == "" {
				t.Error("progress de erro sem descrição")
			}
			if ev.Contact == nil || ev.Contact.Phone != "5511999990002" {
				t.Error("progress de erro apontando contato errado")
			}
		}
	}
	if errorProgress != 1 {
		t.Errorf("progress status=error emitido %d vezes, esperado 1", errorProgress)
	}

	// falha individual não aborta o lote
	last := events[len(events)-1]
	if last.Type != EVENT_DONE {
		t.Errorf("lote não terminou com done após falha individual")
	}
}

func TestRunWaitingDelaysWithinBounds(t *testing.T) {
	sender := &fakeSender{}
	e := &Engine{Sender: sender, MinDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond}
	contacts := []Contact{{Phone: "1"}, {Phone: "2"}, {Phone: "3"}, {Phone: "4"}}

	events, _ := collectEvents(e, contacts, "oi", nil)

	for _, ev := range events {
		if ev.Type != EVENT_WAITING {
			continue
		}
		if ev.DelayMs < 1 || ev.DelayMs > 3 {
			t.Errorf("delay %dms fora da janela [1,3]", ev.DelayMs)
		}
	}
}

func TestRandomDelayInclusiveBounds(t *testing.T) {
	e := &Engine{MinDelay: 10 * time.Millisecond, MaxDelay: 30 * time.Millisecond}
	for i := 0; i < 200; i++ {
		d := e.randomDelay()
		if d < 10*time.Millisecond || d > 30*time.Millisecond {
			t.Fatalf("delay %v fora de [10ms, 30ms]", d)
		}
	}
}

func TestRunShufflePreservesContacts(t *testing.T) {
	sender := &fakeSender{}
	contacts := []Contact{
		{Phone: "5511999990001"},
		{Phone: "5511999990002"},
		{Phone: "5511999990003"},
		{Phone: "5511999990004"},
	}

	collectEvents(fastEngine(sender), contacts, "Olá", nil)

	got := append([]string(nil), sender.texts...)
	want := []string{"5511999990001", "5511999990002", "5511999990003", "5511999990004"}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("enviou para %d contatos, esperado %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("conjunto de destinatários mudou: %v", sender.texts)
			break
		}
	}

	// a lista original não pode ser alterada pelo shuffle
	if contacts[0].Phone != "5511999990001" || contacts[3].Phone != "5511999990004" {
		t.Error("shuffle alterou a lista do caller")
	}
}

func TestRunSingleContactHasNoWaiting(t *testing.T) {
	sender := &fakeSender{}
	events, sum := collectEvents(fastEngine(sender), []Contact{{Phone: "5511999990001"}}, "Olá", nil)

	if n := countByType(events, EVENT_WAITING); n != 0 {
		t.Errorf("waiting emitido %d vezes para 1 contato", n)
	}
	if sum.Total != 1 || sum.Sent != 1 {
		t.Errorf("summary inesperado: %+v", sum)
	}
}

func TestRunImageGoesAsMediaWithCaption(t *testing.T) {
	sender := &fakeSender{}
	image := &Image{Base64: "aGVsbG8=", MimeType: "image/png"}
	contacts := []Contact{{Phone: "5511999990001"}, {Phone: "5511999990002"}}

	collectEvents(fastEngine(sender), contacts, "promo de setembro", image)

	if len(sender.texts) != 0 {
		t.Errorf("com imagem, nada deveria sair como texto puro: %v", sender.texts)
	}
	if len(sender.medias) != 2 {
		t.Fatalf("esperava 2 envios de mídia, houve %d", len(sender.medias))
	}
	for _, caption := range sender.captions {
		if caption != "promo de setembro" {
			t.Errorf("caption = %q", caption)
		}
	}
}

func TestRunStopsWhenConsumerLeaves(t *testing.T) {
	sender := &fakeSender{}
	contacts := []Contact{{Phone: "1"}, {Phone: "2"}, {Phone: "3"}}

	var events []Event
	fastEngine(sender).Run(context.Background(), contacts, "oi", nil, func(ev Event) bool {
		events = append(events, ev)
		// consumidor some depois do primeiro progress
		return ev.Type != EVENT_PROGRESS
	})

	if len(sender.texts) != 1 {
		t.Errorf("engine continuou enviando depois do consumidor sumir: %d envios", len(sender.texts))
	}
	if countByType(events, EVENT_DONE) != 0 {
		t.Error("done emitido para consumidor que já foi embora")
	}
}

func TestRunContextCancelStopsSending(t *testing.T) {
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{Sender: sender, MinDelay: 50 * time.Millisecond, MaxDelay: 60 * time.Millisecond}
	contacts := []Contact{{Phone: "1"}, {Phone: "2"}, {Phone: "3"}}

	var events []Event
	sum := e.Run(ctx, contacts, "oi", nil, func(ev Event) bool {
		events = append(events, ev)
		if ev.Type == EVENT_PROGRESS {
			cancel()
		}
		return true
	})

	if len(sender.texts) != 1 {
		t.Errorf("cancelamento não parou os envios: %d", len(sender.texts))
	}
	// mesmo cancelado, o job fecha com done e a conta bate
	last := events[len(events)-1]
	if last.Type != EVENT_DONE {
		t.Errorf("último evento: %s, esperado done", last.Type)
	}
	if sum.Sent != 1 {
		t.Errorf("summary.Sent = %d", sum.Sent)
	}
}
