package main

import (
	"encoding/json"
	"log"

	"factorydesk/internal/config"
	"factorydesk/internal/database"
	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

// Seeds the terminal database with the starter machines, roster and
// departments. Existing non-empty documents are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	kv, err := store.NewGormStore(db, store.WithQuota(cfg.StorageQuotaBytes))
	if err != nil {
		log.Fatal(err)
	}

	seedDoc(kv, store.KeyMachines, domain.SeedMachines())
	seedDoc(kv, store.KeyPersonnel, domain.SeedPersonnel())
	seedDoc(kv, store.KeyDepartments, domain.SeedDepartments())

	log.Println("seed complete")
}

func seedDoc[T any](kv store.KeyValueStore, key string, items []T) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		log.Fatalf("read %q: %v", key, err)
	}
	if ok && len(raw) > 0 {
		var existing []T
		if json.Unmarshal(raw, &existing) == nil && len(existing) > 0 {
			log.Printf("%s: already has %d item(s), skipping", key, len(existing))
			return
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.Fatalf("encode %q: %v", key, err)
	}
	if err := kv.Set(key, data); err != nil {
		log.Fatalf("write %q: %v", key, err)
	}
	log.Printf("%s: seeded %d item(s)", key, len(items))
}
