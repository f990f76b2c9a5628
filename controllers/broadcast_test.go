package controllers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type streamEvent struct {
	Type   string `json:"type"`
	Total  int    `json:"total"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func parseStream(t *testing.T, body string) []streamEvent {
	t.Helper()
	var events []streamEvent
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("linha do stream não é json: %q (%v)", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestBroadcastValidation(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter(t, db, &fakeSender{})

	cases := []struct {
		name string
		body gin.H
	}{
		{"sem contatos", gin.H{"contacts": []gin.H{}, "message": "Olá"}},
		{"mensagem vazia", gin.H{"contacts": []gin.H{{"phone": "5511999990001"}}, "message": "   "}},
		{"contato sem phone", gin.H{"contacts": []gin.H{{"name": "Maria"}}, "message": "Olá"}},
		{"imagem inválida", gin.H{"contacts": []gin.H{{"phone": "5511999990001"}}, "message": "Olá", "imageBase64": "%%%"}},
	}
	for _, tc := range cases {
		w := doJSON(t, r, "POST", "/api/broadcast", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, esperado 400 (body: %s)", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestBroadcastStreamTwoContacts(t *testing.T) {
	db := openTestDB(t)
	sender := &fakeSender{}
	r := newTestRouter(t, db, sender)

	w := doJSON(t, r, "POST", "/api/broadcast", gin.H{
		"contacts": []gin.H{{"phone": "5511999990001"}, {"phone": "5511999990002"}},
		"message":  "Olá",
	})
	assertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	events := parseStream(t, w.Body.String())
	if len(events) != 5 {
		t.Fatalf("%d eventos, esperado 5 (start, 2x progress, 1x waiting, done): %+v", len(events), events)
	}
	if events[0].Type != "start" || events[0].Total != 2 {
		t.Errorf("start inesperado: %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Type != "done" || last.Sent != 2 || last.Failed != 0 || last.Total != 2 {
		t.Errorf("done inesperado: %+v", last)
	}

	waiting := 0
	for _, ev := range events {
		if ev.Type == "waiting" {
			waiting++
		}
	}
	if waiting != 1 {
		t.Errorf("%d eventos waiting, esperado 1", waiting)
	}

	if len(sender.texts) != 2 {
		t.Errorf("%d envios de texto, esperado 2", len(sender.texts))
	}
}

func TestBroadcastStreamReportsPartialFailure(t *testing.T) {
	db := openTestDB(t)
	sender := &fakeSender{failPhones: map[string]bool{"5511999990002": true}}
	r := newTestRouter(t, db, sender)

	w := doJSON(t, r, "POST", "/api/broadcast", gin.H{
		"contacts": []gin.H{{"phone": "5511999990001"}, {"phone": "5511999990002"}},
		"message":  "Olá",
	})
	assertStatus(t, w, http.StatusOK)

	events := parseStream(t, w.Body.String())
	last := events[len(events)-1]
	if last.Type != "done" {
		t.Fatalf("stream não terminou com done: %+v", events)
	}
	if last.Sent != 1 || last.Failed != 1 || last.Total != 2 {
		t.Errorf("done = %+v, esperado sent:1 failed:1 total:2", last)
	}

	sawError := false
	for _, ev := range events {
		if ev.Type == "progress" && ev.Status == "error" {
			sawError = true
			if ev.Error == "" {
				t.Error("progress de erro sem descrição")
			}
		}
	}
	if !sawError {
		t.Error("nenhum progress status=error no stream")
	}
}

func TestBroadcastWithImageSendsMedia(t *testing.T) {
	db := openTestDB(t)
	sender := &fakeSender{}
	r := newTestRouter(t, db, sender)

	w := doJSON(t, r, "POST", "/api/broadcast", gin.H{
		"contacts":      []gin.H{{"phone": "5511999990001"}},
		"message":       "promo",
		"imageBase64":   "aGVsbG8=",
		"imageMimeType": "image/png",
	})
	assertStatus(t, w, http.StatusOK)

	if len(sender.medias) != 1 || len(sender.texts) != 0 {
		t.Errorf("com imagem: medias=%d texts=%d", len(sender.medias), len(sender.texts))
	}
}
