package domain

import "time"

// AuditLog represents one recorded mutation of back-office data.
type AuditLog struct {
	ID         string
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}
