/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 10:05:44
 * @FilePath: \shiftcash-bot\backend\internal\bot\dispatcher.go
 * @LastEditTime: 2025-10-20 11:32:18
 */
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"shiftcash-bot/backend/internal/infra/metrics"
	"shiftcash-bot/backend/internal/infra/ratelimit"
	"shiftcash-bot/backend/internal/infra/telegram"
	shiftsvc "shiftcash-bot/backend/internal/service/shift"

	"go.uber.org/zap"
)

const (
	// handleTimeout 限定单条命令从鉴权到回复的总耗时。
	handleTimeout = 15 * time.Second
	// pollBackoff 是 getUpdates 出错后的退避时间，避免错误风暴刷爆日志。
	pollBackoff = 3 * time.Second
)

// BotAPI 抽象调度器依赖的聊天平台能力，测试时用假实现替代。
type BotAPI interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// CommandService 抽象命令路由层。
type CommandService interface {
	Handle(ctx context.Context, req shiftsvc.Request) (shiftsvc.Outcome, error)
}

// Dispatcher 负责长轮询拉取更新、解析命令并把结果文案发回会话。
// 展示层的全部职责都在这里：路由层只返回结构化结果，不产出文案。
type Dispatcher struct {
	api         BotAPI
	service     CommandService
	limiter     ratelimit.Limiter
	pollTimeout int
	rateLimit   int
	rateWindow  time.Duration
	logger      *zap.SugaredLogger
}

// NewDispatcher 构造调度器。limiter 可以为 nil，表示不限流。
func NewDispatcher(api BotAPI, service CommandService, limiter ratelimit.Limiter, pollTimeout int, rateLimit int, rateWindow time.Duration, logger *zap.SugaredLogger) *Dispatcher {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		api:         api,
		service:     service,
		limiter:     limiter,
		pollTimeout: pollTimeout,
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
		logger:      logger,
	}
}

// Run 启动长轮询主循环，直到 ctx 取消才返回。
// offset 始终设为已见的最大 update_id + 1，保证每条更新只消费一次。
func (d *Dispatcher) Run(ctx context.Context) error {
	var offset int64

	d.logger.Infow("bot dispatcher started", "poll_timeout", d.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			d.logger.Infow("bot dispatcher stopped")
			return ctx.Err()
		default:
		}

		updates, err := d.api.GetUpdates(ctx, offset, d.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Infow("bot dispatcher stopped")
				return ctx.Err()
			}
			d.logger.Warnw("poll updates failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			// 每条更新独立处理，单个会话的慢回复不阻塞轮询。
			go d.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate 处理一条更新：限流、路由、回复，并上报命令指标。
func (d *Dispatcher) handleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	command, arg, ok := parseCommand(msg.Text)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if !d.allow(ctx, msg.Chat.ID) {
		metrics.ObserveCommand(command, "rate_limited", 0)
		d.reply(ctx, msg.Chat.ID, rateLimitedText)
		return
	}

	start := time.Now()
	outcome, err := d.service.Handle(ctx, shiftsvc.Request{
		CallerID: msg.From.ID,
		Command:  command,
		Arg:      arg,
	})
	elapsed := time.Since(start)

	if err != nil {
		d.replyError(ctx, msg.Chat.ID, command, err, elapsed)
		return
	}

	metrics.ObserveCommand(command, "ok", elapsed)
	if outcome.Kind == shiftsvc.OutcomeAccepted {
		metrics.RecordAccumulate(string(outcome.Field))
	}
	d.reply(ctx, msg.Chat.ID, renderOutcome(outcome))
}

// replyError 把路由层错误映射到用户文案。未知命令静默忽略，
// 权限与参数错误给出提示，其余一律按内部错误处理并落日志。
func (d *Dispatcher) replyError(ctx context.Context, chatID int64, command string, err error, elapsed time.Duration) {
	switch {
	case errors.Is(err, shiftsvc.ErrUnknownCommand):
		metrics.ObserveCommand(command, "unknown", elapsed)
	case errors.Is(err, shiftsvc.ErrAccessDenied):
		metrics.ObserveCommand(command, "denied", elapsed)
		d.reply(ctx, chatID, deniedText)
	case errors.Is(err, shiftsvc.ErrInvalidArgument):
		metrics.ObserveCommand(command, "bad_input", elapsed)
		if strings.Contains(err.Error(), "missing value") {
			d.reply(ctx, chatID, renderBadInput(command))
			return
		}
		d.reply(ctx, chatID, badNumberText)
	default:
		metrics.ObserveCommand(command, "error", elapsed)
		d.logger.Errorw("handle command failed", "command", command, "chat_id", chatID, "error", err)
		d.reply(ctx, chatID, internalErrorText)
	}
}

// renderOutcome 把结构化结果翻译成回复文案。
func renderOutcome(outcome shiftsvc.Outcome) string {
	switch outcome.Kind {
	case shiftsvc.OutcomeMenu:
		return renderMenu(outcome.Role)
	case shiftsvc.OutcomeAccepted:
		return renderAccepted(outcome.Field, outcome.Amount)
	case shiftsvc.OutcomeReport:
		if outcome.Report != nil {
			return renderReport(*outcome.Report)
		}
	case shiftsvc.OutcomeSubmitted:
		return renderSubmitted(outcome.Delivered)
	case shiftsvc.OutcomeReset:
		return resetText
	}
	return internalErrorText
}

// allow 对单个会话做固定窗口限流。限流器故障时放行，
// 限流是保护手段，不能反过来让机器人不可用。
func (d *Dispatcher) allow(ctx context.Context, chatID int64) bool {
	if d.limiter == nil || d.rateLimit <= 0 {
		return true
	}
	result, err := d.limiter.Allow(ctx, "bot:chat:"+strconv.FormatInt(chatID, 10), d.rateLimit, d.rateWindow)
	if err != nil {
		d.logger.Warnw("rate limiter failed, allowing request", "chat_id", chatID, "error", err)
		return true
	}
	return result.Allowed
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if err := d.api.SendMessage(ctx, chatID, text); err != nil {
		d.logger.Warnw("send reply failed", "chat_id", chatID, "error", err)
	}
}

// parseCommand 从消息文本里解析斜杠命令。返回命令名（不含斜杠，
// 去掉 @botname 后缀）与其后的原始参数；非命令消息返回 ok=false。
func parseCommand(text string) (command, arg string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(rest), true
}
