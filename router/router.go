package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/controllers"
	"github.com/yeremiapane/queueapp/live"
	"github.com/yeremiapane/queueapp/middlewares"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

// Dependencies are the wired services the HTTP layer calls into.
type Dependencies struct {
	Queue     *services.QueueService
	Archiver  *services.Archiver
	Analytics *services.AnalyticsService
	Plans     *services.PlanService
	Hub       *live.Hub
	Clock     services.Clock

	AllowedOrigins    string
	JoinRateLimit     float64
	JoinBurst         int
	PlatformAdminUser string
	PlatformAdminHash string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())

	restaurantCtrl := controllers.NewRestaurantController(deps.Queue)
	queueCtrl := controllers.NewQueueController(deps.Queue)
	cleanupCtrl := controllers.NewCleanupController(deps.Archiver, deps.Analytics)
	analyticsCtrl := controllers.NewAnalyticsController(deps.Analytics, deps.Queue, deps.Clock)
	planCtrl := controllers.NewPlanController(deps.Plans)
	platformCtrl := controllers.NewPlatformController(deps.Plans, deps.PlatformAdminUser, deps.PlatformAdminHash)
	liveCtrl := controllers.NewLiveController(deps.Hub)

	joinLimiter := middlewares.NewRateLimiter(deps.JoinRateLimit, deps.JoinBurst)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/plans", planCtrl.ListPlans)
	r.POST("/restaurants", restaurantCtrl.Register)
	r.GET("/restaurants/:id", restaurantCtrl.GetRestaurant)
	r.POST("/restaurants/:id/queue", joinLimiter.RateLimit(), queueCtrl.JoinQueue)
	r.GET("/restaurants/:id/queue/:queue_number", queueCtrl.QueueStatus)
	r.POST("/platform/login", platformCtrl.Login)

	// dashboard live updates, token in the query string
	r.GET("/ws/restaurants/:id", middlewares.WebSocketAuthMiddleware(), liveCtrl.Stream)

	// ----------------------------------------------------------------
	//                      OWNER ROUTES
	// ----------------------------------------------------------------
	owner := r.Group("/admin/restaurants/:id")
	owner.Use(middlewares.AuthMiddleware(), middlewares.RestaurantOwner())
	{
		owner.GET("/dashboard", restaurantCtrl.Dashboard)
		owner.POST("/queue/:queue_number/allocate", queueCtrl.AllocateTable)
		owner.POST("/cleanup", cleanupCtrl.Cleanup)
		owner.GET("/cleanup/history", cleanupCtrl.History)
		owner.GET("/analytics", analyticsCtrl.Report)
		owner.GET("/analytics/export", analyticsCtrl.Export)
		owner.POST("/payment-proof", planCtrl.SubmitPaymentProof)
	}

	// ----------------------------------------------------------------
	//                      PLATFORM ROUTES
	// ----------------------------------------------------------------
	platform := r.Group("/platform")
	platform.Use(middlewares.AuthMiddleware(), middlewares.RoleCheck(utils.RolePlatformAdmin))
	{
		platform.GET("/restaurants", platformCtrl.ListRestaurants)
		platform.POST("/restaurants/:id/approve", platformCtrl.Approve)
		platform.POST("/restaurants/:id/reject", platformCtrl.Reject)
	}

	return r
}
