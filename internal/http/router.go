package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/devlabsgt/backend/internal/domain/identity"
	httpH "github.com/devlabsgt/backend/internal/http/handlers"
	httpMW "github.com/devlabsgt/backend/internal/http/middleware"
	"github.com/devlabsgt/backend/internal/observability"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	RegistryHandler    *httpH.RegistryHandler
	BeneficiaryHandler *httpH.BeneficiaryHandler
	ProjectHandler     *httpH.ProjectHandler
	SweepHandler       *httpH.SweepHandler
	MailConfigHandler  *httpH.MailConfigHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("ngo-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/logout", cfg.AuthHandler.Logout)
			api.POST("/recovery/request", cfg.AuthHandler.RequestRecoveryCode)
			api.POST("/recovery/redeem", cfg.AuthHandler.RedeemRecoveryCode)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// User administration
		if cfg.UserHandler != nil && cfg.AuthMiddleware != nil {
			admin := protected.Group("/users")
			admin.Use(cfg.AuthMiddleware.RequireRoles(identity.RoleSuper, identity.RoleAdmin))
			admin.POST("", cfg.UserHandler.Register)
			admin.GET("", cfg.UserHandler.List)
			admin.GET("/:id", cfg.UserHandler.Get)
			admin.PUT("/:id", cfg.UserHandler.Update)
			admin.PUT("/:id/password", cfg.UserHandler.ChangePassword)
		}

		// Catalogs
		if cfg.RegistryHandler != nil {
			protected.GET("/donors", cfg.RegistryHandler.ListDonors)
			protected.GET("/donors/:id", cfg.RegistryHandler.GetDonor)
			protected.POST("/donors", cfg.RegistryHandler.CreateDonor)
			protected.PUT("/donors/:id", cfg.RegistryHandler.UpdateDonor)
			protected.DELETE("/donors/:id", cfg.RegistryHandler.DeleteDonor)

			protected.GET("/objectives", cfg.RegistryHandler.ListObjectives)
			protected.POST("/objectives", cfg.RegistryHandler.CreateObjective)
			protected.PUT("/objectives/:id", cfg.RegistryHandler.UpdateObjective)

			protected.GET("/strategic-lines", cfg.RegistryHandler.ListLines)
			protected.POST("/strategic-lines", cfg.RegistryHandler.CreateLine)
			protected.PUT("/strategic-lines/:id", cfg.RegistryHandler.UpdateLine)
		}

		// Beneficiaries
		if cfg.BeneficiaryHandler != nil {
			protected.GET("/beneficiaries", cfg.BeneficiaryHandler.List)
			protected.GET("/beneficiaries/:id", cfg.BeneficiaryHandler.Get)
			protected.POST("/beneficiaries", cfg.BeneficiaryHandler.Create)
			protected.PUT("/beneficiaries/:id", cfg.BeneficiaryHandler.Update)
			protected.PUT("/beneficiaries/:id/status", cfg.BeneficiaryHandler.SetStatus)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.GET("/projects", cfg.ProjectHandler.List)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.PUT("/projects/:id", cfg.ProjectHandler.Update)
			protected.PUT("/projects/:id/status", cfg.ProjectHandler.SetStatus)

			protected.POST("/projects/:id/activities", cfg.ProjectHandler.AddActivity)
			protected.PUT("/projects/:id/activities/:activityId/progress", cfg.ProjectHandler.UpdateActivityProgress)
			protected.POST("/projects/:id/activities/:activityId/beneficiaries", cfg.ProjectHandler.AssociateBeneficiaries)
			protected.PUT("/projects/:id/activities/:activityId/beneficiaries/:beneficiaryId", cfg.ProjectHandler.UpdateAssociationStatus)

			protected.POST("/projects/:id/evidences", cfg.ProjectHandler.UploadEvidences)
			protected.DELETE("/projects/:id/evidences/:evidenceId", cfg.ProjectHandler.RemoveEvidence)
		}

		// Out-of-schedule sweep run
		if cfg.SweepHandler != nil && cfg.AuthMiddleware != nil {
			ops := protected.Group("/admin")
			ops.Use(cfg.AuthMiddleware.RequireRoles(identity.RoleSuper, identity.RoleAdmin))
			ops.POST("/sweep", cfg.SweepHandler.Trigger)
		}

		// Mail configuration
		if cfg.MailConfigHandler != nil && cfg.AuthMiddleware != nil {
			mail := protected.Group("/mail-config")
			mail.Use(cfg.AuthMiddleware.RequireRoles(identity.RoleSuper, identity.RoleAdmin))
			mail.GET("", cfg.MailConfigHandler.Get)
			mail.PUT("", cfg.MailConfigHandler.Update)
		}
	}

	return r
}
