package manifest

import (
	"fmt"
	"time"

	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Builder collects committed items while a run is in progress.
type Builder struct {
	m RunManifest
}

func NewBuilder(pageURL string, pageType models.PageType) *Builder {
	return &Builder{m: RunManifest{PageURL: pageURL, PageType: pageType.String()}}
}

// Add records a committed item; itemID is 0 when no library is attached.
func (b *Builder) Add(item *models.Item, itemID int64) {
	b.m.Items = append(b.m.Items, ItemRecord{
		ItemType: item.ItemType,
		Title:    item.Title,
		URL:      item.URL,
		ItemID:   itemID,
	})
}

// Finish stamps the manifest with the run outcome.
func (b *Builder) Finish(runErr error, cancelled bool) RunManifest {
	b.m.GeneratedAt = time.Now().Format(time.RFC3339)
	b.m.ItemCount = len(b.m.Items)
	switch {
	case runErr != nil:
		b.m.Status = "error"
		b.m.Error = runErr.Error()
	case cancelled:
		b.m.Status = "cancelled"
	default:
		b.m.Status = "success"
	}
	return b.m
}

// Save writes the manifest as YAML to path.
func Save(m RunManifest, path string, s *storage.Storage) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshalling manifest: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}
