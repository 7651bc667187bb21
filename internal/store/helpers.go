package store

import (
	"database/sql"
	"fmt"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/tone"
)

// documentColumns is the column list shared by all document queries.
const documentColumns = `id, title, category, language, tone, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanDocument scans one document row in documentColumns order.
func scanDocument(row rowScanner) (models.Document, error) {
	var d models.Document
	var category, toneValue string
	err := row.Scan(&d.ID, &d.Title, &category, &d.Language, &toneValue, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	d.Category = models.Category(category)
	d.Tone = tone.Tone(toneValue)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

// scanDocuments drains rows into a slice.
func scanDocuments(rows *sql.Rows) ([]models.Document, error) {
	defer rows.Close()
	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document failed: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return docs, nil
}
