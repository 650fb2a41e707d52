package manifest

// RunManifest summarizes one translator run over a page.
type RunManifest struct {
	GeneratedAt string       `yaml:"generated_at" json:"generated_at"`
	PageURL     string       `yaml:"page_url" json:"page_url"`
	PageType    string       `yaml:"page_type" json:"page_type"`
	Status      string       `yaml:"status" json:"status"` // "success", "cancelled" or "error"
	Error       string       `yaml:"error,omitempty" json:"error,omitempty"`
	ItemCount   int          `yaml:"item_count" json:"item_count"`
	Items       []ItemRecord `yaml:"items,omitempty" json:"items,omitempty"`
}

// ItemRecord is one committed item in the manifest.
type ItemRecord struct {
	ItemType string `yaml:"item_type" json:"item_type"`
	Title    string `yaml:"title" json:"title"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	ItemID   int64  `yaml:"item_id,omitempty" json:"item_id,omitempty"`
}
