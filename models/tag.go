package models

import "time"

// Tag é um rótulo livre para organizar leads (ex: "plano familiar").
type Tag struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name      string     `gorm:"not null;unique_index" json:"name"`
	Color     string     `gorm:"default:''" json:"color"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// LeadTag liga um lead a uma tag (N:N).
type LeadTag struct {
	ID     int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LeadID int64 `gorm:"not null;index" json:"lead_id"`
	TagID  int64 `gorm:"not null;index" json:"tag_id"`
}
