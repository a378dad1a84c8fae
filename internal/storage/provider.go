// Package storage defines the org-directory file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for org file operations.
type Provider interface {
	// List returns metadata for every .org file under dir (relative to the org root).
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the org root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the org root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the org root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the org root).
	Move(oldPath, newPath string) error
}
