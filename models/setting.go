package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Chaves de setting conhecidas (sobrepõem o config do gateway).
const SETTING_EVOLUTION_BASE_URL = "evolution_base_url"
const SETTING_EVOLUTION_API_KEY = "evolution_api_key"
const SETTING_EVOLUTION_INSTANCE = "evolution_instance"

// Setting é um par chave/valor editável em runtime pelos operadores.
type Setting struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Key       string     `gorm:"not null;unique_index" json:"key"`
	Value     string     `gorm:"type:text" json:"value"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// GetSetting devolve o valor da chave, ou "" se não existir.
func GetSetting(db *gorm.DB, key string) string {
	var s Setting
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		return ""
	}
	return s.Value
}

// SetSetting faz upsert da chave.
func SetSetting(db *gorm.DB, key, value string) error {
	var s Setting
	err := db.Where("key = ?", key).First(&s).Error
	if gorm.IsRecordNotFoundError(err) {
		return db.Create(&Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&s).Update("value", value).Error
}
