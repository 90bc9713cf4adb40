package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/leadpilot/lead-management-api/internal/config"
	"github.com/leadpilot/lead-management-api/internal/constants"
	"github.com/leadpilot/lead-management-api/internal/database"
	"github.com/leadpilot/lead-management-api/internal/handlers"
	"github.com/leadpilot/lead-management-api/internal/middleware"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/leadpilot/lead-management-api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.Metrics())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	jobRepo := repository.NewScrapingJobRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	scoringService := services.NewScoringService(aiService)
	templateService := services.NewTemplateService(documentRepo, leadRepo, aiService)
	workflowService := services.NewWorkflowService(workflowRepo, leadRepo, documentRepo)
	scraperService := services.NewScraperService(jobRepo, leadRepo, aiService, cfg.ScraperServiceURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	leadHandler := handlers.NewLeadHandler(leadRepo, scoringService)
	workflowHandler := handlers.NewWorkflowHandler(workflowRepo, workflowService)
	documentHandler := handlers.NewDocumentHandler(documentRepo, templateService)
	scrapingHandler := handlers.NewScrapingHandler(jobRepo, scraperService)
	aiHandler := handlers.NewAIHandler(aiService)
	analyticsHandler := handlers.NewAnalyticsHandler(leadRepo, workflowRepo, documentRepo, jobRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Lead Management API is running",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)
		api.GET("/user", middleware.RequireAuth(), authHandler.GetCurrentUser)

		// Lead routes (protected)
		leads := api.Group("/leads")
		leads.Use(middleware.RequireAuth())
		{
			leads.GET("", leadHandler.ListLeads)
			leads.POST("", leadHandler.CreateLead)
			leads.GET("/:id", leadHandler.GetLead)
			leads.PATCH("/:id", leadHandler.UpdateLead)
			leads.DELETE("/:id", leadHandler.DeleteLead)
			leads.PATCH("/:id/score", leadHandler.ScoreLead)
		}

		// Workflow routes (protected)
		workflows := api.Group("/workflows")
		workflows.Use(middleware.RequireAuth())
		{
			workflows.GET("", workflowHandler.ListWorkflows)
			workflows.POST("", workflowHandler.CreateWorkflow)
			workflows.GET("/:id", workflowHandler.GetWorkflow)
			workflows.PATCH("/:id", workflowHandler.UpdateWorkflow)
			workflows.DELETE("/:id", workflowHandler.DeleteWorkflow)
			workflows.POST("/:id/run", workflowHandler.RunWorkflow)
		}

		// Document routes (protected)
		documents := api.Group("/documents")
		documents.Use(middleware.RequireAuth())
		{
			documents.GET("", documentHandler.ListDocuments)
			documents.POST("", documentHandler.CreateDocument)
			documents.POST("/generate", documentHandler.GenerateDocument)
			documents.GET("/:id", documentHandler.GetDocument)
			documents.PATCH("/:id", documentHandler.UpdateDocument)
			documents.DELETE("/:id", documentHandler.DeleteDocument)
		}

		// Template catalog (protected)
		templates := api.Group("/document-templates")
		templates.Use(middleware.RequireAuth())
		{
			templates.GET("", documentHandler.ListTemplates)
			templates.GET("/:id", documentHandler.GetTemplate)
		}

		// Scraping job routes (protected)
		jobs := api.Group("/scraping-jobs")
		jobs.Use(middleware.RequireAuth())
		{
			jobs.GET("", scrapingHandler.ListJobs)
			jobs.POST("", scrapingHandler.CreateJob)
			jobs.GET("/:id", scrapingHandler.GetJob)
			jobs.PATCH("/:id", scrapingHandler.UpdateJob)
			jobs.DELETE("/:id", scrapingHandler.DeleteJob)
			jobs.POST("/:id/run", scrapingHandler.RunJob)
			jobs.POST("/:id/schedule", scrapingHandler.SetSchedule)
			jobs.POST("/:id/results/:resultId/create-lead", scrapingHandler.PromoteResult)
		}

		// AI routes (protected)
		ai := api.Group("/ai")
		ai.Use(middleware.RequireAuth())
		{
			ai.POST("/chat", aiHandler.Chat)
			ai.POST("/score-lead", leadHandler.ScoreAdHoc)
		}

		// Analytics (protected)
		api.GET("/analytics/summary", middleware.RequireAuth(), analyticsHandler.GetSummary)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
