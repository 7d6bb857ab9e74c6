/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 14:22:31
 * @FilePath: \shiftcash-bot\backend\internal\service\notify\fanout.go
 * @LastEditTime: 2025-10-18 14:22:36
 */
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"shiftcash-bot/backend/internal/domain/shift"
	appLogger "shiftcash-bot/backend/internal/infra/logger"
	"shiftcash-bot/backend/internal/infra/metrics"

	"go.uber.org/zap"
)

// Sender 抽象把报表送达单个收件人的主通道（聊天平台）。
type Sender interface {
	SendReport(ctx context.Context, recipient int64, report shift.Report) error
}

// Copier 抽象报表的抄送通道（例如邮件），成功与否不计入主通道成功数。
type Copier interface {
	CopyReport(ctx context.Context, report shift.Report) error
}

// Fanout 把一份编译好的报表独立投递给每个收件人。
// 单个收件人失败只记录日志与计数，既不中断其余投递，也不向调用方抛错。
type Fanout struct {
	sender  Sender
	copiers []Copier
	logger  *zap.SugaredLogger
}

// NewFanout 构造分发器。copiers 可以为空。
func NewFanout(sender Sender, copiers []Copier, logger *zap.SugaredLogger) *Fanout {
	if logger == nil {
		logger = appLogger.S().With("component", "service.notify")
	}
	return &Fanout{sender: sender, copiers: copiers, logger: logger}
}

// Deliver 并发投递报表并返回成功送达的收件人数量。
// 各收件人之间不共享可变状态，投递完全并行；本层不做任何重试，
// 单次失败即视为本次提交对该收件人投递失败。
func (f *Fanout) Deliver(ctx context.Context, report shift.Report, recipients []int64) int {
	if f == nil || f.sender == nil || len(recipients) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var delivered atomic.Int64
	for _, recipient := range recipients {
		wg.Add(1)
		go func(recipient int64) {
			defer wg.Done()
			if err := f.sender.SendReport(ctx, recipient, report); err != nil {
				f.logger.Warnw("deliver report failed", "recipient", recipient, "error", err)
				metrics.RecordFanoutDelivery("failure")
				return
			}
			delivered.Add(1)
			metrics.RecordFanoutDelivery("success")
		}(recipient)
	}
	wg.Wait()

	// 抄送通道在主投递完成后并行执行，结果只影响日志。
	var copyWG sync.WaitGroup
	for _, copier := range f.copiers {
		if copier == nil {
			continue
		}
		copyWG.Add(1)
		go func(copier Copier) {
			defer copyWG.Done()
			if err := copier.CopyReport(ctx, report); err != nil {
				f.logger.Warnw("copy report failed", "error", err)
			}
		}(copier)
	}
	copyWG.Wait()

	return int(delivered.Load())
}
