package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/api/handler"
	"github.com/Andrei050191/La-serviciu/internal/api/middleware"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

// loginRateLimit throttles the code login: a 4-digit code is a small space
// to brute-force.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// authentication (no token required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/code", h.Auth.ChangeCode)

			// person directory with per-day attendance
			members := authorized.Group("/members")
			{
				members.GET("", h.Member.List)
				members.GET("/me", h.Member.Me)
				members.GET("/:id", h.Member.Get)
				members.PUT("/:id/status", h.Member.SetStatus)   // admin or self (handler enforces)
				members.PUT("/:id/meal", h.Member.ToggleMeal)    // admin or self
				members.GET("/:id/status-logs", h.Member.StatusLogs)
				members.POST("/import", middleware.RoleAuth(model.RoleAdmin), h.Member.Import)
			}

			// duty calendar
			roster := authorized.Group("/roster")
			{
				roster.GET("", h.Roster.GetRange)
				roster.GET("/:day", h.Roster.GetDay)
				roster.PUT("/:day/slots/:index", middleware.RoleAuth(model.RoleAdmin), h.Roster.Assign)
				roster.PUT("/:day/mode", middleware.RoleAuth(model.RoleAdmin), h.Roster.SetDayMode)
			}

			// per-role allow-lists
			eligibility := authorized.Group("/eligibility")
			{
				eligibility.GET("", h.Eligibility.List)
				eligibility.PUT("/:role", middleware.RoleAuth(model.RoleAdmin), h.Eligibility.SetRole)
			}

			// derived day view
			authorized.GET("/summary/:day", h.Summary.Day)

			// downloads
			export := authorized.Group("/export")
			{
				export.GET("/roster", middleware.RoleAuth(model.RoleAdmin), h.Export.RosterWorkbook)
				export.GET("/my-duties.ics", h.Export.MyCalendar)
			}

			// change feed
			authorized.GET("/events", h.Events.Stream)
		}
	}

	return r
}
