package importris

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/cinii-translator/internal/common"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/db"
	"github.com/dtnitsch/cinii-translator/pkg/ris"
	"github.com/dtnitsch/cinii-translator/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ErrNotRIS is returned for files whose first tag is not TY.
var ErrNotRIS = errors.New("input does not look like RIS")

func ImportAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one RIS file, got %d arguments", c.NArg())
	}

	path := c.Args().First()
	data, err := (&storage.Storage{}).ReadFile(path)
	if err != nil {
		return err
	}

	var library *db.DB
	if config.DBPath != "" {
		library, err = db.Open(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()
	}

	items, err := Import(c.Context, string(data), library, logger)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	logger.Info("RIS file imported", "path", path, "items", len(items))
	return common.Encode(os.Stdout, config.Format, items)
}

// Import parses RIS text and returns its items, saving each to library when
// one is given.
func Import(ctx context.Context, text string, library *db.DB, logger *slog.Logger) ([]*models.Item, error) {
	if !ris.Detect(text) {
		return nil, ErrNotRIS
	}

	items := []*models.Item{}
	importer := ris.NewImporter(logger)
	importer.SetString(text)
	importer.SetHandler(func(item *models.Item) error {
		if library != nil {
			if _, err := library.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		items = append(items, item)
		return nil
	})
	if err := importer.Translate(ctx); err != nil {
		return items, err
	}
	return items, nil
}
