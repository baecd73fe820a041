package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coaching-portal/api/swagger"
	"github.com/noah-isme/coaching-portal/internal/middleware"
	"github.com/noah-isme/coaching-portal/pkg/config"
	"github.com/noah-isme/coaching-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-portal/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/healthz", a.probe.Health)
	r.GET("/metrics", a.probe.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// origins granted CORS may also post JSON
	csrfCfg := cfg.CSRF
	csrfCfg.TrustedOrigins = append(append([]string{}, cfg.CSRF.TrustedOrigins...), cfg.CORS.AllowedOrigins...)

	portal := r.Group("",
		middleware.Session(a.sessions, cfg.Session, logr),
		middleware.SessionExpired(logr),
		middleware.CSRF(csrfCfg, cfg.Session.SecureCookie),
	)

	portal.GET("/", a.public.Landing)
	portal.POST("/enquiry", a.public.Enquiry)
	portal.GET("/pay/checkout", a.public.Checkout)
	portal.POST("/pay/checkout", a.public.Pay)

	portal.GET("/login", a.auth.LoginPage)
	portal.POST("/login/portal", a.auth.SelectPortal)
	portal.POST("/login/back", a.auth.Back)
	portal.POST("/login", a.auth.Login)
	portal.POST("/logout", a.auth.Logout)
	portal.GET("/signup", a.auth.SignupPage)
	portal.POST("/signup", a.auth.Signup)

	student := portal.Group("", middleware.RequireAuth())
	student.GET("/dashboard", a.student.Dashboard)
	student.POST("/dashboard/chat", a.student.Chat)
	student.POST("/dashboard/chat/clear", a.student.ClearChat)
	student.POST("/dashboard/submissions", a.student.Submit)
	student.POST("/dashboard/support", a.student.OpenTicket)
	student.GET("/certificates/:id/download", a.student.DownloadCertificate)

	admin := portal.Group("/admin", middleware.RequireAdmin())
	admin.GET("", a.admin.Overview)
	admin.GET("/leads", a.leads.List)
	admin.POST("/leads", a.leads.Create)
	admin.POST("/leads/selection", a.leads.Selection)
	admin.POST("/leads/bulk-notify", a.leads.BulkNotify)
	admin.POST("/leads/import", a.leads.Import)
	admin.GET("/leads/export", a.leads.Export)
	admin.POST("/leads/:id/notify", a.leads.Notify)
	admin.POST("/leads/:id/call", a.leads.Call)
	admin.POST("/leads/:id/delete", a.leads.Delete)
	admin.POST("/leads/:id/enroll", a.leads.Enroll)
	admin.GET("/classes", a.admin.Classes)
	admin.POST("/classes", a.admin.CreateBatch)
	admin.POST("/classes/:id/enroll", a.admin.EnrollStudent)
	admin.POST("/classes/:id/certificates", a.admin.IssueCertificate)
	admin.GET("/marketing", a.admin.Marketing)
	admin.POST("/marketing/generate", a.admin.GenerateCampaign)
	admin.POST("/marketing/broadcast", a.admin.Broadcast)
	admin.GET("/communications", a.admin.Communications)
	admin.POST("/communications/email", a.admin.SendEmail)
	admin.GET("/support", a.admin.Support)
	admin.GET("/system/metrics", a.probe.System)

	api := portal.Group(cfg.APIPrefix, middleware.JSONAPI())
	api.POST("/auth/portal", a.api.SelectPortal)
	api.POST("/auth/back", a.api.Back)
	api.POST("/auth/login", a.api.Login)
	api.POST("/auth/logout", a.api.Logout)
	api.GET("/auth/me", middleware.RequireAuth(), a.api.Me)

	leads := api.Group("/leads", middleware.RequireAdmin())
	leads.GET("", a.api.Leads)
	leads.POST("/selection", a.api.Selection)
	leads.POST("/bulk-notify", a.api.BulkNotify)
	leads.GET("/export", a.api.Export)

	return r
}
