package handler

import (
	"context"
	"net/http"
	"strconv"

	"shiftcash-bot/backend/internal/domain/shift"
	response "shiftcash-bot/backend/internal/infra/common"
	shiftsvc "shiftcash-bot/backend/internal/service/shift"

	"github.com/gin-gonic/gin"
)

// SubmissionLister 抽象提交审计的查询能力。
type SubmissionLister interface {
	ListRecent(ctx context.Context, limit int) ([]shift.ReportSubmission, error)
}

// ReportHandler 暴露当日报表与提交审计的只读运维接口。
type ReportHandler struct {
	service     *shiftsvc.Service
	submissions SubmissionLister
}

// NewReportHandler 构造报表 Handler。
func NewReportHandler(service *shiftsvc.Service, submissions SubmissionLister) *ReportHandler {
	return &ReportHandler{service: service, submissions: submissions}
}

// Today 返回当日编译后的报表。
func (h *ReportHandler) Today(c *gin.Context) {
	if h == nil || h.service == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal, "report service unavailable", nil)
		return
	}

	report, err := h.service.CurrentReport(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "compile report failed", nil)
		return
	}
	response.Success(c, http.StatusOK, report, nil)
}

// Submissions 返回最近的交班提交审计记录，limit 通过查询参数控制。
func (h *ReportHandler) Submissions(c *gin.Context) {
	if h == nil || h.submissions == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal, "submission store unavailable", nil)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "limit must be an integer in [1,200]", nil)
			return
		}
		limit = parsed
	}

	subs, err := h.submissions.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list submissions failed", nil)
		return
	}
	response.Success(c, http.StatusOK, subs, gin.H{"limit": limit})
}
