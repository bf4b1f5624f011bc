package main

import (
	"context"
	"fmt"

	"municipal-reports-service/config"
	"municipal-reports-service/database"
	"municipal-reports-service/handlers"
	"municipal-reports-service/middleware"
	"municipal-reports-service/rabbitmq"
	"municipal-reports-service/services"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	EndPointHealth           = "/health"
	EndPointReports          = "/reports"
	EndPointReport           = "/reports/:id"
	EndPointApproveReport    = "/reports/:id/approve"
	EndPointRejectReport     = "/reports/:id/reject"
	EndPointChangeStatus     = "/reports/:id/status"
	EndPointAttachMaintainer = "/reports/:id/maintainer"
	EndPointOverrideReport   = "/reports/:id/override"
	EndPointComments         = "/reports/:id/comments"
	EndPointOfficers         = "/officers"
	EndPointGetMap           = "/reports_map"
)

func main() {
	cfg := config.Load()
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	log.Info("Starting the municipal reports service...")

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// RabbitMQ is optional; without it status/comment events are logged and
	// dropped.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQEnabled {
		publisher, err = rabbitmq.NewPublisher(cfg.GetRabbitMQURL(), cfg.RabbitMQExchange)
		if err != nil {
			log.Errorf("Failed to connect to RabbitMQ, continuing without events: %v", err)
		} else {
			defer publisher.Close()
		}
	}
	notifier := rabbitmq.NewNotifier(publisher)

	// Stores
	reportStore := database.NewReportService(db)
	commentStore := database.NewCommentService(db)
	officeStore := database.NewOfficeService(db)

	// Core services
	assigner := services.NewAssignmentService(services.DefaultOfficeRouting(), officeStore, reportStore)
	lifecycle := services.NewLifecycleService(reportStore, assigner, notifier)
	comments := services.NewCommentService(reportStore, commentStore, notifier)

	reportsHandler := handlers.NewReportsHandler(reportStore, officeStore, lifecycle, comments)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	}))

	router.GET(EndPointHealth, reportsHandler.HealthCheck)

	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	municipal := middleware.RequireRoles(middleware.RoleMunicipality)
	collaborators := middleware.RequireRoles(middleware.RoleMunicipality, middleware.RoleExternalMaintainer)

	apiV3 := router.Group("/api/v3")
	{
		apiV3.POST(EndPointReports, reportsHandler.CreateReport)
		apiV3.GET(EndPointGetMap, reportsHandler.GetMap)

		apiV3.GET(EndPointReports, auth, municipal, reportsHandler.ListReports)
		apiV3.GET(EndPointReport, auth, collaborators, reportsHandler.GetReport)
		apiV3.POST(EndPointApproveReport, auth, municipal, reportsHandler.ApproveReport)
		apiV3.POST(EndPointRejectReport, auth, municipal, reportsHandler.RejectReport)
		apiV3.POST(EndPointChangeStatus, auth, collaborators, reportsHandler.ChangeStatus)
		apiV3.POST(EndPointAttachMaintainer, auth, municipal, reportsHandler.AttachMaintainer)
		apiV3.POST(EndPointOverrideReport, auth, municipal, reportsHandler.OverrideReport)
		apiV3.POST(EndPointComments, auth, collaborators, reportsHandler.AddComment)
		apiV3.GET(EndPointComments, auth, collaborators, reportsHandler.ListComments)
		apiV3.POST(EndPointOfficers, auth, municipal, reportsHandler.AddOfficer)
	}

	log.Infof("Municipal reports service listening on port %d", cfg.Port)
	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
