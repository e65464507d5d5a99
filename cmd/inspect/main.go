// Command inspect dumps the chat store for debugging. It opens the Badger
// directory read-only, scans a key prefix and renders one row per record.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/chat-backend/badger", "Path to badger DB")
	// Record keys by default; pass -prefix idx: to see the secondary indexes.
	prefix := flag.String("prefix", "", "Prefix to scan, empty scans everything")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
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
			key := string(item.Key())

			err := item.Value(func(value []byte) error {
				table.Append([]string{key, kindOf(key), describe(value)})
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

func kindOf(key string) string {
	switch {
	case strings.HasPrefix(key, "chat:"):
		return color.Cyan.Sprint("CHAT")
	case strings.HasPrefix(key, "msg:"):
		return color.Green.Sprint("MESSAGE")
	case strings.HasPrefix(key, "att:"):
		return color.Yellow.Sprint("ATTACHMENT")
	case strings.HasPrefix(key, "readmark:"):
		return color.Magenta.Sprint("READMARK")
	case strings.HasPrefix(key, "idx:"):
		return color.Gray.Sprint("INDEX")
	default:
		return "UNKNOWN"
	}
}

// describe summarizes a JSON record without depending on its exact shape.
// Index entries store a bare id, everything else is an object.
func describe(value []byte) string {
	var record map[string]any
	if err := json.Unmarshal(value, &record); err != nil {
		return string(value)
	}

	var parts []string
	for _, field := range []string{"name", "initiator", "sender", "content", "status", "filename", "account_id", "deleted"} {
		v, ok := record[field]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", field, v))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d fields", len(record))
	}
	return strings.Join(parts, " ")
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)
	return badger.Open(opts)
}
