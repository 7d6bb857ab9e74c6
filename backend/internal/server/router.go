package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"shiftcash-bot/backend/internal/handler"
	"shiftcash-bot/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	ReportHandler *handler.ReportHandler
	AuthMW        middleware.Authenticator
}

// NewRouter 构建运维 HTTP 面的 Gin Engine。机器人业务全部走 Bot API，
// 这里只承载健康检查、Prometheus 指标与受 JWT 保护的只读报表接口。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if origin == "" {
				return false
			}
			if origin == "null" {
				return true
			}
			if strings.HasPrefix(origin, "http://localhost:") {
				return true
			}
			if strings.HasPrefix(origin, "http://127.0.0.1:") {
				return true
			}
			return false
		},
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		if opts.ReportHandler != nil {
			reports := api.Group("/reports")
			if opts.AuthMW != nil {
				reports.Use(opts.AuthMW.Handle())
			}
			reports.GET("/today", opts.ReportHandler.Today)
			reports.GET("/submissions", opts.ReportHandler.Submissions)
		}
	}

	return r
}
