/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 09:12:54
 * @FilePath: \shiftcash-bot\backend\internal\service\shift\service.go
 * @LastEditTime: 2025-10-19 16:08:27
 */
package shift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shiftcash-bot/backend/internal/domain/identity"
	shiftdomain "shiftcash-bot/backend/internal/domain/shift"
	appLogger "shiftcash-bot/backend/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrAccessDenied 表示调用者角色没有执行该命令的权限。不算系统错误，不落错误日志。
	ErrAccessDenied = errors.New("shift: access denied")
	// ErrInvalidArgument 表示数值参数缺失、无法解析或为负数。
	ErrInvalidArgument = errors.New("shift: invalid argument")
	// ErrUnknownCommand 表示命令名不在路由表内。
	ErrUnknownCommand = errors.New("shift: unknown command")
)

// MetricsRepository 抽象当日计数存储的必要方法。
type MetricsRepository interface {
	Accumulate(ctx context.Context, day time.Time, field shiftdomain.Field, amount decimal.Decimal) error
	ReadDay(ctx context.Context, day time.Time) (shiftdomain.DailyMetrics, error)
	ResetDay(ctx context.Context, day time.Time) error
}

// SubmissionRecorder 抽象交班提交审计的写入。
type SubmissionRecorder interface {
	Record(ctx context.Context, sub *shiftdomain.ReportSubmission) error
}

// Notifier 抽象报表分发，返回成功送达的收件人数量。
type Notifier interface {
	Deliver(ctx context.Context, report shiftdomain.Report, recipients []int64) int
}

// OutcomeKind 区分一次命令执行的结果类别，供展示层选择回复文案。
type OutcomeKind int

const (
	OutcomeMenu OutcomeKind = iota + 1
	OutcomeAccepted
	OutcomeReport
	OutcomeSubmitted
	OutcomeReset
)

// Request 是传输层交给路由器的最小输入：调用者、命令名、原始参数。
type Request struct {
	CallerID int64
	Command  string
	Arg      string
}

// Outcome 描述命令执行结果，路由器本身不生成任何面向用户的文案。
type Outcome struct {
	Kind      OutcomeKind
	Role      identity.Role
	Field     shiftdomain.Field
	Amount    decimal.Decimal
	Report    *shiftdomain.Report
	Attempted int
	Delivered int
}

type commandKind int

const (
	kindMenu commandKind = iota + 1
	kindAccumulate
	kindSubmit
	kindGetReport
	kindReset
)

type commandSpec struct {
	required identity.Role // 空值表示任何角色可用
	kind     commandKind
	field    shiftdomain.Field
}

// routes 是角色 × 命令的完整状态表。五个录入命令归员工，
// 查询与重置归管理员，start 对所有人开放（按角色返回菜单）。
var routes = map[string]commandSpec{
	"start":      {kind: kindMenu},
	"cash":       {required: identity.RoleEmployee, kind: kindAccumulate, field: shiftdomain.FieldCash},
	"card":       {required: identity.RoleEmployee, kind: kindAccumulate, field: shiftdomain.FieldCard},
	"qr":         {required: identity.RoleEmployee, kind: kindAccumulate, field: shiftdomain.FieldQR},
	"refund":     {required: identity.RoleEmployee, kind: kindAccumulate, field: shiftdomain.FieldRefund},
	"checks":     {required: identity.RoleEmployee, kind: kindAccumulate, field: shiftdomain.FieldChecks},
	"report":     {required: identity.RoleEmployee, kind: kindSubmit},
	"get_report": {required: identity.RoleManager, kind: kindGetReport},
	"reset":      {required: identity.RoleManager, kind: kindReset},
}

// Service 实现命令路由：鉴权、参数解析、向存储与分发层转发。
// 本层不包含任何业务算术，派生值统一由 domain/shift.Compile 计算。
type Service struct {
	classifier  *identity.Classifier
	repo        MetricsRepository
	notifier    Notifier
	submissions SubmissionRecorder
	loc         *time.Location
	logger      *zap.SugaredLogger
}

// NewService 构造命令路由服务。loc 决定“今天”的口径，为空时取进程本地时区。
func NewService(classifier *identity.Classifier, repo MetricsRepository, notifier Notifier, submissions SubmissionRecorder, loc *time.Location, logger *zap.SugaredLogger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = appLogger.S().With("component", "service.shift")
	}
	return &Service{
		classifier:  classifier,
		repo:        repo,
		notifier:    notifier,
		submissions: submissions,
		loc:         loc,
		logger:      logger,
	}
}

// Handle 执行一条命令。权限与参数错误在本层终结，不会触达存储。
func (s *Service) Handle(ctx context.Context, req Request) (Outcome, error) {
	spec, ok := routes[req.Command]
	if !ok {
		return Outcome{}, ErrUnknownCommand
	}

	role := s.classifier.Classify(req.CallerID)
	if spec.required != "" && role != spec.required {
		return Outcome{}, ErrAccessDenied
	}

	switch spec.kind {
	case kindMenu:
		return Outcome{Kind: OutcomeMenu, Role: role}, nil
	case kindAccumulate:
		return s.accumulate(ctx, spec.field, req.Arg)
	case kindSubmit:
		return s.submitReport(ctx, req.CallerID)
	case kindGetReport:
		report, err := s.CurrentReport(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeReport, Role: role, Report: &report}, nil
	case kindReset:
		if err := s.repo.ResetDay(ctx, s.today()); err != nil {
			return Outcome{}, fmt.Errorf("reset today: %w", err)
		}
		return Outcome{Kind: OutcomeReset, Role: role}, nil
	}
	return Outcome{}, ErrUnknownCommand
}

// CurrentReport 读取当日计数并编译报表，供 get_report 命令与运维接口共用。
func (s *Service) CurrentReport(ctx context.Context) (shiftdomain.Report, error) {
	m, err := s.repo.ReadDay(ctx, s.today())
	if err != nil {
		return shiftdomain.Report{}, fmt.Errorf("read today: %w", err)
	}
	return shiftdomain.Compile(m), nil
}

// accumulate 解析金额并写入存储。存储层瞬时失败最多重试一次，
// 仍失败则把错误原样交给上层：金额自增绝不允许被静默丢弃。
func (s *Service) accumulate(ctx context.Context, field shiftdomain.Field, arg string) (Outcome, error) {
	amount, err := parseAmount(field, arg)
	if err != nil {
		return Outcome{}, err
	}

	day := s.today()
	if err := s.repo.Accumulate(ctx, day, field, amount); err != nil {
		if errors.Is(err, shiftdomain.ErrInvalidField) {
			return Outcome{}, err
		}
		s.logger.Warnw("accumulate failed, retrying once", "field", field, "error", err)
		if err = s.repo.Accumulate(ctx, day, field, amount); err != nil {
			return Outcome{}, fmt.Errorf("accumulate %s: %w", field, err)
		}
	}
	return Outcome{Kind: OutcomeAccepted, Field: field, Amount: amount}, nil
}

// submitReport 编译报表、分发给所有管理员并写入审计记录。
func (s *Service) submitReport(ctx context.Context, callerID int64) (Outcome, error) {
	report, err := s.CurrentReport(ctx)
	if err != nil {
		return Outcome{}, err
	}

	recipients := s.classifier.Managers()
	delivered := 0
	if s.notifier != nil {
		delivered = s.notifier.Deliver(ctx, report, recipients)
	}

	s.recordSubmission(ctx, callerID, report, len(recipients), delivered)

	return Outcome{
		Kind:      OutcomeSubmitted,
		Report:    &report,
		Attempted: len(recipients),
		Delivered: delivered,
	}, nil
}

// recordSubmission 写审计行。审计失败只记日志，不影响提交结果。
func (s *Service) recordSubmission(ctx context.Context, callerID int64, report shiftdomain.Report, attempted, delivered int) {
	if s.submissions == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warnw("marshal report payload failed", "error", err)
		return
	}
	sub := &shiftdomain.ReportSubmission{
		ID:          uuid.NewString(),
		SubmittedBy: callerID,
		Attempted:   attempted,
		Delivered:   delivered,
		Payload:     payload,
	}
	if err := s.submissions.Record(ctx, sub); err != nil {
		s.logger.Warnw("record report submission failed", "submission_id", sub.ID, "error", err)
		return
	}
	s.logger.Infow("report submitted", "submission_id", sub.ID, "submitted_by", callerID, "delivered", delivered, "attempted", attempted)
}

func (s *Service) today() time.Time {
	return shiftdomain.Day(time.Now(), s.loc)
}

// parseAmount 把原始参数解析为非负数值。金额字段同时接受 `.` 与 `,`
// 作为小数分隔符；checks 按整数解析。任何解析失败或负数都返回 ErrInvalidArgument。
func parseAmount(field shiftdomain.Field, arg string) (decimal.Decimal, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: missing value", ErrInvalidArgument)
	}

	if !field.Monetary() {
		count, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, arg)
		}
		if count < 0 {
			return decimal.Decimal{}, fmt.Errorf("%w: value must not be negative", ErrInvalidArgument)
		}
		return decimal.NewFromInt(count), nil
	}

	normalized := strings.ReplaceAll(arg, ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, arg)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: value must not be negative", ErrInvalidArgument)
	}
	return amount, nil
}
