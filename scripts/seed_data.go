// Seeds the demo catalog through the configured persist driver. Pass
// --force to overwrite an existing product snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/safar/go-pos-store/internal/config"
	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/persist"
	"github.com/safar/go-pos-store/internal/store"
)

func main() {
	force := len(os.Args) > 1 && os.Args[1] == "--force"

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	kv, err := persist.Open(cfg)
	if err != nil {
		log.Fatalf("Open persist store: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()

	if !force {
		if _, err := kv.Load(ctx, persist.KeyProducts); err == nil {
			log.Fatalf("Product snapshot already exists; use --force to overwrite")
		} else if !errors.Is(err, persist.ErrKeyNotFound) {
			log.Fatalf("Check existing snapshot: %v", err)
		}
	}

	snapshot := struct {
		Products   []models.Product  `json:"products"`
		Categories []models.Category `json:"categories"`
	}{
		Products:   store.DemoProducts(time.Now()),
		Categories: store.DemoCategories(),
	}

	blob, err := json.Marshal(snapshot)
	if err != nil {
		log.Fatalf("Marshal seed snapshot: %v", err)
	}

	if err := kv.Save(ctx, persist.KeyProducts, blob); err != nil {
		log.Fatalf("Save seed snapshot: %v", err)
	}

	log.Printf("Seeded %d products and %d categories via %s driver",
		len(snapshot.Products), len(snapshot.Categories), cfg.Persist.Driver)
}
