package domain

import (
	"strings"
	"time"
)

// PageUpdate is one inbound unit of work: a scraped markdown page keyed by
// the document id carried in the trailing segment of its source URL.
type PageUpdate struct {
	DocumentID   string
	Title        string
	Organization string
	Content      string
	SourceURL    string
	ObservedAt   time.Time
}

// NewPageUpdate builds a PageUpdate from a raw ingress payload. The document
// id and title are derived from the source URL; ObservedAt is assigned here.
func NewPageUpdate(sourceURL, organization, content string, now time.Time) (*PageUpdate, error) {
	if sourceURL == "" || organization == "" {
		return nil, ErrMissingRequiredField
	}

	docID, title, err := ParsePageURL(sourceURL)
	if err != nil {
		return nil, err
	}

	return &PageUpdate{
		DocumentID:   docID,
		Title:        title,
		Organization: organization,
		Content:      content,
		SourceURL:    sourceURL,
		ObservedAt:   now.UTC(),
	}, nil
}

// ParsePageURL extracts the document id and title from a source URL. The last
// path segment is split on '-': the trailing token is the document id and the
// leading token is the title, so ".../my-title-42" yields id "42", title "my".
func ParsePageURL(sourceURL string) (docID, title string, err error) {
	slug := strings.Trim(sourceURL, "/")
	if idx := strings.LastIndex(slug, "/"); idx >= 0 {
		slug = slug[idx+1:]
	}

	parts := strings.Split(slug, "-")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[0] == "" {
		return "", "", ErrInvalidPageURL
	}

	return parts[len(parts)-1], parts[0], nil
}

// NormalizeOrg converts an organization name into the chunk filename prefix:
// lowercase with spaces replaced by underscores.
func NormalizeOrg(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
