// internal/model/template.go
package model

import "time"

type EmailTemplate struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Name       string    `db:"name" json:"name"`
	Subject    string    `db:"subject" json:"subject"`
	Content    string    `db:"content" json:"content"`
	Category   string    `db:"category" json:"category"`
	Variables  []string  `db:"variables" json:"variables"`
	IsDefault  bool      `db:"is_default" json:"is_default"`
	UsageCount int       `db:"usage_count" json:"usage_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
