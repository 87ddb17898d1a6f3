package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/sitm-outreach/internal/billing"
	"github.com/xavierca1/sitm-outreach/internal/config"
	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/identity"
	"github.com/xavierca1/sitm-outreach/internal/infra/database"
	"github.com/xavierca1/sitm-outreach/internal/infra/http/handlers"
	"github.com/xavierca1/sitm-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/sitm-outreach/internal/infra/integration/social"
	"github.com/xavierca1/sitm-outreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/sitm-outreach/internal/infra/mail"
	"github.com/xavierca1/sitm-outreach/internal/infra/memstore"
	"github.com/xavierca1/sitm-outreach/internal/infra/notify"
	"github.com/xavierca1/sitm-outreach/internal/infra/progress"
	"github.com/xavierca1/sitm-outreach/internal/infra/queue"
	"github.com/xavierca1/sitm-outreach/internal/infra/worker"
	"github.com/xavierca1/sitm-outreach/internal/jobs"
	"github.com/xavierca1/sitm-outreach/internal/leadgen"
	"github.com/xavierca1/sitm-outreach/internal/ledger"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ .env não encontrado, usando variáveis de ambiente")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Catálogo e motor de templates
	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("❌ Catálogo inválido: %v", err)
	}
	engine, err := content.NewEngine(catalog, cfg.Sender())
	if err != nil {
		log.Fatalf("❌ Templates inválidos: %v", err)
	}

	// 2. Repositórios
	var (
		db           *sql.DB
		leadRepo     entity.LeadRepositoryInterface
		campaignRepo entity.CampaignRepositoryInterface
		paymentRepo  entity.PaymentRepositoryInterface
		bookingRepo  entity.BookingRepositoryInterface
	)
	if cfg.DatabaseURL != "" {
		db, err = database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Falha ao conectar no Postgres: %v", err)
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				log.Fatalf("❌ %v", err)
			}
		}
		leadRepo = database.NewLeadRepository(db)
		campaignRepo = database.NewCampaignRepository(db)
		paymentRepo = database.NewPaymentRepository(db)
		bookingRepo = database.NewBookingRepository(db)
		log.Println("🐘 Persistência: Postgres")
	} else {
		leadRepo = memstore.NewLeadRepository()
		campaignRepo = memstore.NewCampaignRepository()
		paymentRepo = memstore.NewPaymentRepository()
		bookingRepo = memstore.NewBookingRepository()
		log.Println("🧠 Persistência: memória (sessão)")
	}

	// 3. Progresso dos jobs
	var (
		rdb      *redis.Client
		jobStore entity.JobStoreInterface = progress.NewMemoryStore()
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		jobStore = progress.NewRedisStore(rdb, progress.DefaultTTL)
		log.Printf("📦 Progresso dos jobs no Redis (%s)", cfg.RedisAddr)
	}
	runner := jobs.NewRunner(jobStore)

	// 4. Fila (opcional)
	var (
		rabbit   *queue.RabbitMQ
		producer usecase.QueueProducerInterface
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer rabbit.Close()
		producer = queue.NewProducer(rabbit.Ch)
	}

	// 5. Canais de entrega
	metrics := middleware.Outreach{}
	notifier := notify.NewRouter().
		Register(entity.ChannelEmail, emailSender(cfg)).
		Register(entity.ChannelSMS, smsSender(cfg))
	var publisher usecase.SocialPublisher = social.LogPublisher{}
	if cfg.SocialWebhookURL != "" {
		publisher = social.NewWebhookPublisher(cfg.SocialWebhookURL, cfg.SocialWebhookToken)
	}

	// 6. UseCases
	campaignLedger := ledger.New(campaignRepo, engine).WithObserver(middleware.RecordCampaignTransition)
	generator := leadgen.NewGenerator(identity.New(), engine, cfg.GenerationChunkSize)

	generateUC := usecase.NewGenerateLeadsUseCase(generator, leadRepo, runner, cfg.MaxSyncLeads, metrics)
	dispatchUC := usecase.NewDispatchCampaignUseCase(
		campaignLedger, engine, leadRepo, notifier, publisher, runner, producer,
		cfg.DispatchRate, cfg.DispatchBurst, metrics,
	)
	campaignUC := usecase.NewCampaignUseCase(campaignLedger, dispatchUC)
	paymentUC := usecase.NewProcessPaymentUseCase(
		paymentRepo, billing.NewSimulatedGateway(cfg.DeclineProbability), engine, metrics,
	)
	links, err := billing.NewLinkBuilder(cfg.CheckoutURL)
	if err != nil {
		log.Fatalf("❌ CHECKOUT_URL inválida: %v", err)
	}
	plansUC := usecase.NewPaymentPlansUseCase(engine, links)
	bookingUC := usecase.NewBookAppointmentUseCase(bookingRepo, notifier, cfg.BookingInbox, cfg.CompanyName)

	// 7. Workers
	if rabbit != nil {
		consumerCh, err := rabbit.Conn.Channel()
		if err != nil {
			log.Fatalf("❌ Falha ao abrir canal do consumidor: %v", err)
		}
		if err := consumerCh.Qos(1, 0, false); err != nil {
			log.Fatalf("❌ Falha ao configurar QoS: %v", err)
		}
		go func() {
			if err := queue.NewWorker(consumerCh, dispatchUC).Start(ctx, queue.QueueName); err != nil {
				log.Printf("❌ Worker RabbitMQ parou: %v", err)
			}
		}()
	}
	scheduler := worker.NewScheduledCampaignWorker(campaignLedger, dispatchUC, cfg.SchedulerInterval, rabbit != nil)
	go scheduler.Start(ctx)

	// 8. Handlers e rotas
	var rabbitConn *amqp.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	router := &handlers.Router{
		Health:    handlers.NewHealthHandler(db, rabbitConn, rdb),
		Content:   handlers.NewContentHandler(usecase.NewRenderContentUseCase(engine), engine),
		Leads:     handlers.NewLeadHandler(generateUC, usecase.NewListLeadsUseCase(leadRepo), usecase.NewUpdateLeadStatusUseCase(leadRepo)),
		Campaigns: handlers.NewCampaignHandler(campaignUC, dispatchUC),
		Jobs:      handlers.NewJobHandler(runner),
		Financing: handlers.NewFinancingHandler(usecase.NewQuoteFinancingUseCase(engine)),
		Payments:  handlers.NewPaymentHandler(paymentUC, plansUC),
		Bookings:  handlers.NewBookingHandler(bookingUC),

		Limiter:        handlers.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		AllowedOrigins: cfg.AllowedOrigins,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 SITM Outreach rodando na porta %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Servidor parou: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Erro ao encerrar HTTP: %v", err)
	}
	runner.Shutdown(shutdownCtx)
	log.Println("👋 Encerrado")
}

func loadCatalog(path string) (*content.Catalog, error) {
	if path == "" {
		return content.DefaultCatalog()
	}
	return content.LoadCatalog(path)
}

func emailSender(cfg *config.Config) notify.Sender {
	switch cfg.EmailProvider {
	case "smtp":
		if cfg.MailHost != "" {
			log.Printf("📧 Email via SMTP (%s)", cfg.MailHost)
			return mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.CompanyName)
		}
		log.Println("⚠️ EMAIL_PROVIDER=smtp sem MAIL_HOST, usando envio simulado")
	case "sendgrid":
		if s := mail.NewSendGridSender(mail.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}); s != nil {
			log.Println("📧 Email via SendGrid")
			return s
		}
		log.Println("⚠️ EMAIL_PROVIDER=sendgrid sem SENDGRID_API_KEY, usando envio simulado")
	}
	return notify.NewSimulatedSender(cfg.SimulatedFailure, uint64(time.Now().UnixNano()))
}

func smsSender(cfg *config.Config) notify.Sender {
	client := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppBaseURL)
	if client.Configured() {
		log.Println("💬 SMS via WhatsApp Cloud API")
		return client
	}
	return notify.NewSimulatedSender(cfg.SimulatedFailure, uint64(time.Now().UnixNano())+1)
}
