package routes

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/audit"
	"github.com/cliniflow/clinic-manager/internal/config"
	"github.com/cliniflow/clinic-manager/internal/handlers"
	infraRepo "github.com/cliniflow/clinic-manager/internal/infra/repository"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/policy"
	ucAppointment "github.com/cliniflow/clinic-manager/internal/usecase/appointment"
	ucCashRegister "github.com/cliniflow/clinic-manager/internal/usecase/cashregister"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	enforcer *casbin.Enforcer,
	cfg *config.Config,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	cashRegisterRepo := infraRepo.NewCashRegisterGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	confirmAppointmentUC := ucAppointment.NewConfirmAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
	)

	// ======================================================
	// USE CASES — CASH REGISTER
	// ======================================================
	openClosingUC := ucCashRegister.NewOpenClosing(
		cashRegisterRepo,
		auditDispatcher,
	)

	addTransactionUC := ucCashRegister.NewAddTransaction(
		cashRegisterRepo,
		auditDispatcher,
	)

	removeTransactionUC := ucCashRegister.NewRemoveTransaction(
		cashRegisterRepo,
		auditDispatcher,
	)

	finalizeClosingUC := ucCashRegister.NewFinalizeClosing(
		cashRegisterRepo,
		auditDispatcher,
	)

	getClosingUC := ucCashRegister.NewGetClosing(cashRegisterRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, rdb, cfg)
	meHandler := handlers.NewMeHandler(db)

	patientHandler := handlers.NewPatientHandler(db)
	procedureHandler := handlers.NewProcedureHandler(db)
	profileHandler := handlers.NewProfileHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		confirmAppointmentUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	cashRegisterHandler := handlers.NewCashRegisterHandler(
		openClosingUC,
		addTransactionUC,
		removeTransactionUC,
		finalizeClosingUC,
		getClosingUC,
	)

	dashboardHandler := handlers.NewDashboardHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg, rdb))
		{
			secured.POST("/auth/signout", authHandler.SignOut)
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// PATIENTS
			// ------------------------------
			patients := secured.Group("/patients")
			patients.Use(middleware.RequirePermission(enforcer, policy.EntityPatient, policy.ActionRead))
			{
				patients.GET("", patientHandler.List)
				patients.GET("/:id", patientHandler.Get)
			}

			patientsWrite := secured.Group("/patients")
			patientsWrite.Use(middleware.RequirePermission(enforcer, policy.EntityPatient, policy.ActionWrite))
			{
				patientsWrite.POST("", patientHandler.Create)
				patientsWrite.PATCH("/:id", patientHandler.Update)
			}

			// ------------------------------
			// PROCEDURES
			// ------------------------------
			secured.GET("/procedures",
				middleware.RequirePermission(enforcer, policy.EntityProcedure, policy.ActionRead),
				procedureHandler.List,
			)
			secured.POST("/procedures",
				middleware.RequirePermission(enforcer, policy.EntityProcedure, policy.ActionWrite),
				procedureHandler.Create,
			)
			secured.PATCH("/procedures/:id",
				middleware.RequirePermission(enforcer, policy.EntityProcedure, policy.ActionWrite),
				procedureHandler.Update,
			)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			appointments := secured.Group("/appointments")
			appointments.Use(middleware.RequirePermission(enforcer, policy.EntityAppointment, policy.ActionWrite))
			{
				appointments.POST("", appointmentHandler.Create)
				appointments.PATCH("/:id/confirm", appointmentHandler.Confirm)
				appointments.PATCH("/:id/complete", appointmentHandler.Complete)
				appointments.PATCH("/:id/cancel", appointmentHandler.Cancel)
			}

			secured.GET("/appointments",
				middleware.RequirePermission(enforcer, policy.EntityAppointment, policy.ActionRead),
				appointmentHandler.ListByDate,
			)
			secured.GET("/appointments/month",
				middleware.RequirePermission(enforcer, policy.EntityAppointment, policy.ActionRead),
				appointmentHandler.ListByMonth,
			)

			// ------------------------------
			// CASH REGISTER
			// ------------------------------
			cash := secured.Group("/cash-register")
			{
				cash.GET("/closings",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionRead),
					cashRegisterHandler.ListClosings,
				)
				cash.GET("/closings/by-date",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionRead),
					cashRegisterHandler.GetClosingByDate,
				)
				cash.GET("/closings/:id",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionRead),
					cashRegisterHandler.GetClosing,
				)

				cash.POST("/closings",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionWrite),
					cashRegisterHandler.OpenClosing,
				)
				cash.PATCH("/closings/:id/finalize",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionWrite),
					cashRegisterHandler.Finalize,
				)
				cash.POST("/closings/:id/transactions",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionWrite),
					cashRegisterHandler.AddTransaction,
				)
				cash.DELETE("/closings/:id/transactions/:txid",
					middleware.RequirePermission(enforcer, policy.EntityCashRegister, policy.ActionWrite),
					cashRegisterHandler.RemoveTransaction,
				)
			}

			// ------------------------------
			// DASHBOARD / AUDIT
			// ------------------------------
			secured.GET("/dashboard/summary",
				middleware.RequirePermission(enforcer, policy.EntityDashboard, policy.ActionRead),
				dashboardHandler.Summary,
			)
			secured.GET("/audit-logs",
				middleware.RequirePermission(enforcer, policy.EntityAuditLog, policy.ActionRead),
				auditLogsHandler.List,
			)

			// ------------------------------
			// PROFILE ADMINISTRATION
			// ------------------------------
			profiles := secured.Group("/profiles")
			profiles.Use(middleware.RequirePermission(enforcer, policy.EntityProfile, policy.ActionWrite))
			{
				profiles.GET("", profileHandler.List)
				profiles.PATCH("/:id", profileHandler.Update)
			}
		}
	}
}
