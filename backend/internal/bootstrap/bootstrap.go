/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 20:51:28
 * @FilePath: \shiftcash-bot\backend\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2025-10-20 10:02:34
 */
package bootstrap

import (
	"context"
	"net/http"

	"shiftcash-bot/backend/internal/app"
	"shiftcash-bot/backend/internal/bot"
	"shiftcash-bot/backend/internal/domain/identity"
	"shiftcash-bot/backend/internal/handler"
	"shiftcash-bot/backend/internal/infra/email"
	"shiftcash-bot/backend/internal/infra/ratelimit"
	"shiftcash-bot/backend/internal/infra/telegram"
	"shiftcash-bot/backend/internal/middleware"
	"shiftcash-bot/backend/internal/repository"
	"shiftcash-bot/backend/internal/server"
	"shiftcash-bot/backend/internal/service/notify"
	shiftsvc "shiftcash-bot/backend/internal/service/shift"

	"go.uber.org/zap"
)

// Application 持有装配完成的机器人调度器与运维路由。
type Application struct {
	Resources  *app.Resources
	Service    *shiftsvc.Service
	Dispatcher *bot.Dispatcher
	Router     http.Handler
}

// BuildApplication 完成全部依赖装配：仓储、角色分类器、Telegram 客户端、
// 报表分发、命令路由与 HTTP 面。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources) (*Application, error) {
	metricsRepo := repository.NewShiftMetricsRepository(resources.DB)
	submissionRepo := repository.NewReportSubmissionRepository(resources.DB)

	classifier := identity.NewClassifier(resources.Bot.ManagerIDs, resources.Bot.EmployeeIDs)

	tgClient := telegram.NewClient(resources.Bot.Token)

	copiers := initCopiers(logger)
	fanout := notify.NewFanout(bot.NewReportSender(tgClient), copiers, logger.With("component", "service.notify"))

	service := shiftsvc.NewService(classifier, metricsRepo, fanout, submissionRepo, resources.Loc, logger.With("component", "service.shift"))

	var limiter ratelimit.Limiter
	if resources.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(resources.Redis, "shiftcash")
	} else {
		limiter = ratelimit.NewMemoryLimiter()
		logger.Infow("using in-memory rate limiter; counters won't survive restarts")
	}

	dispatcher := bot.NewDispatcher(
		tgClient,
		service,
		limiter,
		resources.Bot.PollTimeout,
		resources.Bot.RateLimit,
		resources.Bot.RateWindow,
		logger.With("component", "bot.dispatcher"),
	)

	var authMW middleware.Authenticator
	if resources.Bot.AdminJWTSecret != "" {
		authMW = middleware.NewAuthMiddleware(resources.Bot.AdminJWTSecret)
	} else {
		logger.Warnw("ADMIN_JWT_SECRET not set; report API is disabled")
	}

	var reportHandler *handler.ReportHandler
	if authMW != nil {
		reportHandler = handler.NewReportHandler(service, submissionRepo)
	}

	router := server.NewRouter(server.RouterOptions{
		ReportHandler: reportHandler,
		AuthMW:        authMW,
	})

	return &Application{
		Resources:  resources,
		Service:    service,
		Dispatcher: dispatcher,
		Router:     router,
	}, nil
}

// initCopiers 装配报表抄送通道。邮件抄送未配置时返回空列表。
func initCopiers(logger *zap.SugaredLogger) []notify.Copier {
	cfg, enabled, err := email.LoadAliyunConfigFromEnv()
	if err != nil {
		logger.Errorw("load aliyun dm config failed", "error", err)
		return nil
	}
	if !enabled {
		return nil
	}

	sender, err := email.NewAliyunReportSender(cfg)
	if err != nil {
		logger.Errorw("init aliyun dm sender failed", "error", err)
		return nil
	}
	logger.Infow("report email copy enabled", "recipients", len(cfg.Recipients))
	return []notify.Copier{sender}
}
