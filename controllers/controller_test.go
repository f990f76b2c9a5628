package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"vicrm/config"
	"vicrm/controllers"
	dbpkg "vicrm/db"
	"vicrm/models"
	"vicrm/router"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

type fakeSender struct {
	mu         sync.Mutex
	texts      []string
	medias     []string
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
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// sqlite em memória: uma conexão só, senão cada conexão do pool vê um banco vazio
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)
	dbpkg.AutoMigrate(db)
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRouter monta o app inteiro com db em memória e um gateway fake.
func newTestRouter(t *testing.T, db *gorm.DB, sender *fakeSender) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg config.Configuration
	cfg.Broadcast.MinDelayMs = 1
	cfg.Broadcast.MaxDelayMs = 2
	cfg.Broadcast.TimeoutSeconds = 10
	controllers.SetConfigurations(cfg)
	controllers.SetMessageSender(sender)
	t.Cleanup(func() { controllers.SetMessageSender(nil) })

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	router.Initialize(r, cfg)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("resposta não é json: %v (%s)", err, w.Body.String())
	}
	return out
}

func seedLead(t *testing.T, db *gorm.DB, phone string) models.Lead {
	t.Helper()
	lead := models.Lead{Phone: phone, Status: models.LEAD_STATUS_NEW, OwnerType: models.LEAD_OWNER_BOT}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatal(err)
	}
	return lead
}

func seedConversation(t *testing.T, db *gorm.DB, leadID int64) models.Conversation {
	t.Helper()
	conv := models.Conversation{LeadID: leadID, Channel: models.CONVERSATION_CHANNEL_WHATSAPP}
	if err := db.Create(&conv).Error; err != nil {
		t.Fatal(err)
	}
	return conv
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, esperado %d (body: %s)", w.Code, want, w.Body.String())
	}
}
