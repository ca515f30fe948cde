package storage

import "zillow-finder/models"

// ResultWriter is the interface any storage backend must satisfy.
type ResultWriter interface {
	Write(result *models.SearchResult) error
	Close() error
}
