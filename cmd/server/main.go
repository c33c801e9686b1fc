package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"talaam-backend/internal/config"
	"talaam-backend/internal/database"
	"talaam-backend/internal/handlers"
	"talaam-backend/internal/middleware"
	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"
	"talaam-backend/internal/ws"

	_ "talaam-backend/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Talaam Question Workflow API
// @version         1.0
// @description     Multi-role exam question pipeline: gatherers submit, processors review, creators produce variants, explainers annotate, students practice.
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)
	database.Seed(db, cfg.AdminEmail, cfg.AdminPassword)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	gathererService := services.NewGathererService(db)
	processorService := services.NewProcessorService(db)
	creatorService := services.NewCreatorService(db)
	explainerService := services.NewExplainerService(db)
	subscriptionService := services.NewSubscriptionService(db)
	studentService := services.NewStudentService(db, subscriptionService)
	adminService := services.NewAdminService(db)

	authHandler := handlers.NewAuthHandler(authService)
	gathererHandler := handlers.NewGathererHandler(gathererService, hub)
	processorHandler := handlers.NewProcessorHandler(processorService, hub)
	creatorHandler := handlers.NewCreatorHandler(creatorService, hub)
	explainerHandler := handlers.NewExplainerHandler(explainerService, hub)
	studentHandler := handlers.NewStudentHandler(studentService, hub)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	webhookHandler := handlers.NewWebhookHandler(subscriptionService, cfg.WebhookSecret)
	cronHandler := handlers.NewCronHandler(subscriptionService)
	adminHandler := handlers.NewAdminHandler(adminService)
	wsHandler := handlers.NewWSHandler(hub, authService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Webhook-Signature"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/queue/:role", wsHandler.HandleQueueSocket)

	var sweeper *services.Sweeper
	if cfg.SweepInterval > 0 {
		sweeper = services.NewSweeper(subscriptionService, time.Duration(cfg.SweepInterval)*time.Minute)
		sweeper.Start()
	}

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		gatherer := api.Group("/gatherer")
		gatherer.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleGatherer))
		{
			gatherer.POST("/questions", gathererHandler.Submit)
			gatherer.GET("/questions", gathererHandler.ListMine)
			gatherer.GET("/questions/:id", gathererHandler.GetMine)
			gatherer.POST("/questions/:id/resubmit", gathererHandler.Resubmit)
		}

		processor := api.Group("/processor")
		processor.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleProcessor))
		{
			processor.GET("/questions", processorHandler.Queue)
			processor.GET("/questions/:id", processorHandler.Get)
			processor.POST("/questions/:id/accept", processorHandler.Accept)
			processor.POST("/questions/:id/reject", processorHandler.Reject)
			processor.POST("/questions/:id/flag/approve", processorHandler.ApproveFlag)
			processor.POST("/questions/:id/flag/reject", processorHandler.RejectFlag)
		}

		creator := api.Group("/creator")
		creator.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleCreator))
		{
			creator.GET("/questions", creatorHandler.Queue)
			creator.GET("/questions/:id", creatorHandler.Get)
			creator.POST("/questions/:id/variants", creatorHandler.SubmitVariant)
			creator.POST("/questions/:id/update", creatorHandler.SubmitUpdate)
			creator.POST("/questions/:id/flag", creatorHandler.RaiseFlag)
			creator.POST("/questions/:id/resubmit", creatorHandler.Resubmit)
		}

		explainer := api.Group("/explainer")
		explainer.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleExplainer))
		{
			explainer.GET("/questions", explainerHandler.Queue)
			explainer.GET("/questions/:id", explainerHandler.Get)
			explainer.POST("/questions/:id/explanation", explainerHandler.SubmitExplanation)
			explainer.POST("/questions/:id/flag", explainerHandler.RaiseFlag)
			explainer.POST("/questions/:id/resubmit", explainerHandler.Resubmit)
		}

		student := api.Group("/student")
		student.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleStudent))
		{
			student.GET("/questions", studentHandler.Browse)
			student.POST("/questions/:id/flag", studentHandler.RaiseFlag)
			student.POST("/tests", studentHandler.StartTest)
			student.POST("/tests/:id/answers", studentHandler.SubmitAnswers)
			student.GET("/tests/:id", studentHandler.TestResult)
		}

		subscription := api.Group("/subscription")
		{
			subscription.GET("/plans", subscriptionHandler.ListPlans)
			subscription.POST("/subscribe", middleware.JWTAuth(authService), subscriptionHandler.Subscribe)
			subscription.GET("/me", middleware.JWTAuth(authService), subscriptionHandler.Current)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(authService), middleware.RequireRole(workflow.RoleAdmin))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.ChangeUserRole)
			admin.GET("/questions", adminHandler.ListQuestions)
			admin.POST("/plans", adminHandler.CreatePlan)
			admin.DELETE("/plans/:id", adminHandler.DeactivatePlan)
			admin.GET("/subjects", adminHandler.ListSubjects)
			admin.POST("/subjects", adminHandler.CreateSubject)
			admin.POST("/subjects/:id/topics", adminHandler.CreateTopic)
			admin.POST("/topics/:id/subtopics", adminHandler.CreateSubtopic)
		}

		api.POST("/webhooks/payment", webhookHandler.HandlePayment)

		cron := api.Group("/cron")
		cron.Use(middleware.CronAuth(cfg.CronSecret))
		{
			cron.POST("/subscription-expiry", cronHandler.SubscriptionExpiry)
		}
	}

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go func() {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if sweeper != nil {
		sweeper.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
}
