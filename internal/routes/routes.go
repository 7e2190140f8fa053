package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/audit"
	"github.com/clinicavet/vet-scheduler/internal/auth"
	"github.com/clinicavet/vet-scheduler/internal/chat"
	"github.com/clinicavet/vet-scheduler/internal/config"
	"github.com/clinicavet/vet-scheduler/internal/handlers"
	infraRepo "github.com/clinicavet/vet-scheduler/internal/infra/repository"
	"github.com/clinicavet/vet-scheduler/internal/middleware"
	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/session"
	"github.com/clinicavet/vet-scheduler/internal/storage"
	ucAppointment "github.com/clinicavet/vet-scheduler/internal/usecase/appointment"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	sessions session.Store,
	log zerolog.Logger,
) {
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	messageStore := chat.NewMessageStore(db)
	hub := chat.NewHub(appointmentRepo, messageStore, log)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	authSvc := auth.NewService(db, cfg)

	uploader, err := storage.NewUploader(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("media storage disabled")
		uploader = nil
	}

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(appointmentRepo, auditDispatcher)
	assignUC := ucAppointment.NewAssignVet(appointmentRepo, auditDispatcher)
	statusUC := ucAppointment.NewUpdateStatus(appointmentRepo, auditDispatcher)
	listUC := ucAppointment.NewListAppointments(appointmentRepo)
	statsUC := ucAppointment.NewGetStats(appointmentRepo, cfg.ClinicTimezone)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(authSvc, sessions, cfg)
	userHandler := handlers.NewUserHandler(authSvc)
	petHandler := handlers.NewPetHandler(db, uploader)
	appointmentHandler := handlers.NewAppointmentHandler(bookUC, assignUC, statusUC, listUC, statsUC)
	chatHandler := handlers.NewChatHandler(hub, messageStore, appointmentRepo, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	authRequired := middleware.AuthMiddleware(sessions, authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleVet, models.RoleAdmin)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		authAPI := api.Group("/auth")
		{
			authAPI.POST("/login", authHandler.Login)
			authAPI.POST("/registro", authHandler.Register)
			authAPI.GET("/verificar-sesion", authHandler.VerifySession)

			authAPI.POST("/logout", authRequired, authHandler.Logout)
			authAPI.POST("/cambiar-password", authRequired, authHandler.ChangePassword)
			authAPI.GET("/perfil", authRequired, authHandler.GetProfile)
			authAPI.PUT("/perfil", authRequired, authHandler.UpdateProfile)
		}

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(authRequired)
		{
			secured.GET("/veterinarios", userHandler.ListVets)
			secured.GET("/clientes", adminOnly, userHandler.ListClients)
			secured.PATCH("/usuarios/:id/desactivar", adminOnly, userHandler.Deactivate)

			// ------------------------------
			// PETS
			// ------------------------------
			secured.POST("/mascotas", petHandler.Create)
			secured.GET("/mascotas", petHandler.List)
			secured.GET("/mascotas/:id", petHandler.Get)
			secured.PUT("/mascotas/:id", petHandler.Update)
			secured.DELETE("/mascotas/:id", petHandler.Delete)
			secured.POST("/mascotas/:id/foto", petHandler.UploadPhoto)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/citas", appointmentHandler.Create)
			secured.GET("/citas", appointmentHandler.List)
			secured.GET("/citas/hoy", staffOnly, appointmentHandler.Today)
			secured.GET("/citas/estadisticas", adminOnly, appointmentHandler.Stats)
			secured.GET("/citas/:id", appointmentHandler.Get)
			secured.PATCH("/citas/:id/asignar", adminOnly, appointmentHandler.AssignVet)
			secured.PATCH("/citas/:id/estado", appointmentHandler.UpdateStatus)

			// ------------------------------
			// CHAT
			// ------------------------------
			secured.GET("/chat/no-leidos", chatHandler.Unread)
			secured.GET("/chat/recientes", chatHandler.Recent)
			secured.GET("/chat/:id", chatHandler.History)

			secured.GET("/audit-logs", adminOnly, auditLogsHandler.List)
		}
	}

	// Realtime chat rides the same session auth as the REST API.
	r.GET("/ws", authRequired, chatHandler.ServeWS)
}
