package core

import (
	"fmt"
	"strings"
)

// Document is a retrieved passage with its source metadata. Ranked order is
// preserved wherever documents travel through the system.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Serialize renders a document in the "Source: ... / Content: ..." layout
// models receive as retrieval context.
func (d Document) Serialize() string {
	return fmt.Sprintf("Source: %v\nContent: %s", d.Metadata, d.Content)
}

// SerializeDocuments joins documents for prompt context, ranked order intact.
func SerializeDocuments(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Serialize()
	}
	return strings.Join(parts, "\n\n")
}

// JoinContents concatenates raw document contents, used when grading
// groundedness against the retrieved fact set.
func JoinContents(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}
