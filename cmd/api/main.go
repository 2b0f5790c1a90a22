package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"factorydesk/internal/bus"
	"factorydesk/internal/config"
	"factorydesk/internal/database"
	"factorydesk/internal/domain"
	"factorydesk/internal/middleware"
	"factorydesk/internal/modules/assistant"
	"factorydesk/internal/modules/backup"
	"factorydesk/internal/modules/chat"
	"factorydesk/internal/modules/inspection"
	"factorydesk/internal/modules/machine"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/modules/personnel"
	"factorydesk/internal/modules/prefs"
	"factorydesk/internal/modules/session"
	"factorydesk/internal/modules/task"
	"factorydesk/internal/modules/trash"
	jwtsvc "factorydesk/internal/pkg/jwt"
	"factorydesk/internal/pkg/response"
	"factorydesk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	kv, err := store.NewGormStore(db,
		store.WithQuota(cfg.StorageQuotaBytes),
		store.WithPollInterval(cfg.StoragePollInterval),
	)
	if err != nil {
		log.Fatal(err)
	}

	b := bus.NewLocalBus()
	pub := b.Connect()

	machines := store.NewCollection[domain.Machine](store.KeyMachines, kv, pub, domain.SeedMachines)
	records := store.NewCollection[domain.InspectionRecord](store.KeyRecords, kv, pub, nil)
	trashRecords := store.NewCollection[domain.InspectionRecord](store.KeyTrashRecords, kv, pub, nil)
	trashTasks := store.NewCollection[domain.Task](store.KeyTrashTasks, kv, pub, nil)
	trashMachines := store.NewCollection[domain.Machine](store.KeyTrashMachines, kv, pub, nil)
	trashPersonnel := store.NewCollection[domain.Personnel](store.KeyTrashPersonnel, kv, pub, nil)
	roster := store.NewCollection[domain.Personnel](store.KeyPersonnel, kv, pub, domain.SeedPersonnel)
	departments := store.NewCollection[string](store.KeyDepartments, kv, pub, domain.SeedDepartments)
	notifications := store.NewCollection[domain.Notification](store.KeyNotifications, kv, pub, nil)
	tasks := store.NewCollection[domain.Task](store.KeyTasks, kv, pub, nil)
	chatMessages := store.NewCollection[domain.ChatMessage](store.KeyChatMessages, kv, pub, nil)
	sessionSlot := store.NewSlot[domain.User](store.KeySession, kv, pub)
	languageSlot := store.NewSlot[string](store.KeyLanguage, kv, pub)
	appURLSlot := store.NewSlot[string](store.KeyAppURL, kv, pub)

	currentUser := func() *domain.User {
		u, ok := sessionSlot.Get()
		if !ok {
			return nil
		}
		return &u
	}
	coordinator := store.NewCoordinator(kv, b.Connect(),
		func() string { return currentUser().EffectiveID() },
		currentUser,
	)
	for _, s := range []store.Synced{
		machines, records, trashRecords, trashTasks, trashMachines, trashPersonnel,
		roster, departments, notifications, tasks, chatMessages,
		sessionSlot, languageSlot, appURLSlot,
	} {
		coordinator.Register(s)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.SessionTTL)

	notifSvc := notification.NewService(notifications, pub)
	machineSvc := machine.NewService(machines, records, notifSvc)
	inspectionSvc := inspection.NewService(records, machineSvc, notifSvc)
	taskSvc := task.NewService(tasks, notifSvc)
	personnelSvc := personnel.NewService(roster, departments, notifSvc)
	chatSvc := chat.NewService(chatMessages, notifSvc)
	sessionSvc := session.NewService(sessionSlot, roster, notifSvc, j)
	personnelSvc.OnRosterChange(sessionSvc.ReconcileRoster)
	trashSvc := trash.NewService(
		records, trashRecords,
		tasks, trashTasks,
		machines, trashMachines,
		roster, trashPersonnel,
		cfg.TrashRetention, notifSvc,
	)
	trashSvc.OnRecordsChange(machineSvc.SyncDerived)
	backupSvc := backup.NewService(kv, pub, coordinator.ColdLoad)
	prefsSvc := prefs.NewService(languageSlot, appURLSlot, cfg.DefaultLanguage)
	assistantSvc := assistant.NewService(cfg.GeminiAPIKey, cfg.GeminiBaseURL, prefsSvc.Language)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator.Start(ctx)

	hub := bus.NewHub()
	go hub.Run(ctx, b.Connect())

	if cfg.TrashAutosweep {
		go trash.NewSweeper(trashSvc, cfg.SweepInterval).Run(ctx)
	}

	r := gin.Default()

	r.GET("/ws/sync", func(c *gin.Context) {
		claims, err := j.ValidateToken(c.Query("token"))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}
		hub.ServeWS(c.Writer, c.Request, claims.User().EffectiveID())
	})

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		session.NewHandler(sessionSvc).RegisterRoutes(v1, protected)
		personnel.NewHandler(personnelSvc).RegisterRoutes(v1, protected)
		machine.NewHandler(machineSvc).RegisterRoutes(protected)
		inspection.NewHandler(inspectionSvc).RegisterRoutes(protected)
		task.NewHandler(taskSvc).RegisterRoutes(protected)
		chat.NewHandler(chatSvc).RegisterRoutes(protected)
		notification.NewHandler(notifSvc).RegisterRoutes(protected)
		trash.NewHandler(trashSvc).RegisterRoutes(protected)
		backup.NewHandler(backupSvc).RegisterRoutes(protected)
		assistant.NewHandler(assistantSvc).RegisterRoutes(protected)
		prefs.NewHandler(prefsSvc).RegisterRoutes(protected)
	}

	log.Printf("factorydesk terminal listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
