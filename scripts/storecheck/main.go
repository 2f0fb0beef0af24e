package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/internal/repository"
	"github.com/citadel-archive/citadel-api/pkg/config"
	"github.com/citadel-archive/citadel-api/pkg/database"
)

// storecheck opens the local store read-only-style and reports on the
// event snapshot: counts per status, mobile captures past their
// advisory expiry, and file records whose vault path is missing on
// disk. It never mutates anything; expiry remains advisory.
func main() {
	var (
		storePath string
		rootDir   string
		timeout   time.Duration
	)

	flag.StringVar(&storePath, "store", "./citadel.db", "Path to the local store database")
	flag.StringVar(&rootDir, "root", "", "Archive root for vault file checks (skip when empty)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Store read timeout")
	flag.Parse()

	db, err := database.NewSQLite(config.StoreConfig{Path: storePath, BusyTimeout: 5 * time.Second})
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	events, err := repository.NewEventRepository(db).GetAll(ctx)
	if err != nil {
		log.Fatalf("failed to read event snapshot: %v", err)
	}

	now := time.Now()
	byStatus := map[models.EventStatus]int{}
	var expired, missing int

	fmt.Println("Store Report")
	fmt.Println("============")
	for _, e := range events {
		byStatus[e.Status]++
		for _, f := range e.Files {
			if f.Expired(now) {
				expired++
				fmt.Printf("[EXPIRED] %s %q file %s (expired %s)\n",
					e.ID, e.Title, f.ID, time.UnixMilli(*f.ExpiresAt).Format(time.RFC3339))
			}
			if rootDir != "" {
				path := rootDir + "/" + f.StoragePath
				if _, err := os.Stat(path); err != nil {
					missing++
					fmt.Printf("[MISSING] %s %q file %s at %s\n", e.ID, e.Title, f.ID, path)
				}
			}
		}
	}

	fmt.Printf("Events: %d (draft: %d, confirmed: %d, archived: %d)\n",
		len(events), byStatus[models.StatusDraft], byStatus[models.StatusConfirmed], byStatus[models.StatusArchived])
	fmt.Printf("Expired capture files: %d, Missing vault files: %d\n", expired, missing)
	if missing > 0 {
		os.Exit(1)
	}
}
