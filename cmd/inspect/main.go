package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

// Config holds the viewer defaults, overridable by flags.
type Config struct {
	DBPath string `envconfig:"INSPECT_DB_PATH" default:"./data/badger"`
	// INSPECT_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

type storedMessage struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Type      string `json:"type"`
	SubType   string `json:"sub_type"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Lang      string `json:"lang"`
	CreatedAt int64  `json:"created_at"`
}

type storedRoom struct {
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", cfg.DBPath, "Path to badger DB")
	// Default prefix shows messages; use "room:" or "qr:" for the other records
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Room", "Sender", "Lang", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(cfg, rawKey, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(cfg Config, key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m storedMessage
		if err := json.Unmarshal(value, &m); err != nil {
			return []string{key, "?", "", "", "", "", fmt.Sprintf("unmarshal error: %v", err)}
		}
		kind := strings.ToUpper(m.Type)
		if m.SubType != "" {
			kind = fmt.Sprintf("%s/%s", kind, m.SubType)
		}
		if cfg.Colours && m.Type == "system" {
			kind = color.New(color.FgYellow).Render(kind)
		}
		detail := m.Content
		if len(detail) > 60 {
			detail = detail[:60] + "..."
		}
		at := time.Unix(0, m.CreatedAt).Format("15:04:05")
		return []string{key, kind, at, m.Room, m.Sender, m.Lang, detail}
	case strings.HasPrefix(key, "room:"):
		var r storedRoom
		if err := json.Unmarshal(value, &r); err != nil {
			return []string{key, "?", "", "", "", "", fmt.Sprintf("unmarshal error: %v", err)}
		}
		kind := "ROOM"
		if cfg.Colours && r.IsActive {
			kind = color.New(color.FgGreen).Render(kind)
		}
		return []string{key, kind, r.CreatedAt.Format("15:04:05"), r.RoomID, "", "", r.Name}
	default:
		return []string{key, "RAW", "", "", "", "", string(value)}
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
