package main

import (
	"log"

	"factorydesk/internal/config"
	"factorydesk/internal/database"
	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/modules/trash"
	"factorydesk/internal/store"
)

// One-shot sweep of expired trash items, for cron-style deployments
// that keep TRASH_AUTOSWEEP off. Writes go straight to the shared
// store; running terminals pick them up through the storage watcher.
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

	records := store.NewCollection[domain.InspectionRecord](store.KeyRecords, kv, nil, nil)
	trashRecords := store.NewCollection[domain.InspectionRecord](store.KeyTrashRecords, kv, nil, nil)
	tasks := store.NewCollection[domain.Task](store.KeyTasks, kv, nil, nil)
	trashTasks := store.NewCollection[domain.Task](store.KeyTrashTasks, kv, nil, nil)
	machines := store.NewCollection[domain.Machine](store.KeyMachines, kv, nil, nil)
	trashMachines := store.NewCollection[domain.Machine](store.KeyTrashMachines, kv, nil, nil)
	roster := store.NewCollection[domain.Personnel](store.KeyPersonnel, kv, nil, nil)
	trashPersonnel := store.NewCollection[domain.Personnel](store.KeyTrashPersonnel, kv, nil, nil)
	notifications := store.NewCollection[domain.Notification](store.KeyNotifications, kv, nil, nil)

	svc := trash.NewService(
		records, trashRecords,
		tasks, trashTasks,
		machines, trashMachines,
		roster, trashPersonnel,
		cfg.TrashRetention,
		notification.NewService(notifications, nil),
	)

	n, err := svc.SweepExpired(trash.SweeperActorID)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	log.Printf("purged %d expired item(s)", n)
}
