package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/cinii-translator/internal/common"
	dbpkg "github.com/dtnitsch/cinii-translator/pkg/db"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	items, err := database.ListItems(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No items found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-16s %-6s %s\n", "ID", "Added", "Type", "Date", "Title")
	fmt.Println(strings.Repeat("-", 100))
	for _, it := range items {
		fmt.Printf("%-6d %-20s %-16s %-6s %s\n",
			it.ItemID,
			it.CreatedAt.Format("2006-01-02 15:04:05"),
			it.ItemType,
			truncate(it.Date, 6),
			truncate(it.Title, 60),
		)
	}

	fmt.Printf("\nTotal: %d items\n", len(items))
	fmt.Printf("\nTip: Use 'cinii library show <id>' to see details\n")
	return nil
}

// ShowAction prints one stored item in the configured format.
func ShowAction(c *cli.Context) error {
	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	itemID, err := ParseItemID(c.Args().First())
	if err != nil {
		return err
	}
	item, err := database.GetItem(c.Context, itemID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	return common.Encode(os.Stdout, config.Format, item)
}

func ParseItemID(arg string) (int64, error) {
	var itemID int64
	if _, err := fmt.Sscanf(arg, "%d", &itemID); err != nil || itemID <= 0 {
		return 0, fmt.Errorf("invalid item ID: %q", arg)
	}
	return itemID, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
