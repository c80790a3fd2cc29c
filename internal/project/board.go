package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/teardrop/internal/board"
)

// BackupSuffix is appended to a board file's name for the copy kept by
// SaveBoard.
const BackupSuffix = ".bak"

// LoadBoard reads a JSON board document.
func LoadBoard(path string) (*board.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	var doc board.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse board %s: %w", path, err)
	}
	doc.Normalize()
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return &doc, nil
}

// SaveBoard writes doc as JSON. An existing file at path is first copied
// to path+BackupSuffix.
func SaveBoard(path string, doc *board.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}

	if old, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+BackupSuffix, old, 0644); err != nil {
			return fmt.Errorf("failed to write board backup: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing board: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	return nil
}
