// Package models defines the domain types for Ansuz.
package models

import "time"

// DocumentMetadata is a lightweight representation of an org file returned
// by list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
