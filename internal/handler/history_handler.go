package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"comment-history-api/internal/dto"
	"comment-history-api/internal/export"
	"comment-history-api/internal/response"
	"comment-history-api/internal/service"
)

type HistoryHandler struct {
	historyService  service.HistoryService
	downloadService service.DownloadService
	gzip            bool
	logger          *zap.Logger
}

// NewHistoryHandler creates the export and download-ledger handler; gzipExports enables compressed streams
// for clients that accept them
func NewHistoryHandler(
	historyService service.HistoryService,
	downloadService service.DownloadService,
	gzipExports bool,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		historyService:  historyService,
		downloadService: downloadService,
		gzip:            gzipExports,
		logger:          logger,
	}
}

// ExportHistory godoc
// @Summary      사용자 댓글 이력 내보내기
// @Description  지정한 사용자의 댓글 작성/수정/삭제 이력을 text, json, xml 중 하나로 스트리밍합니다.
// @Description  요청 즉시 다운로드 기록이 저장됩니다
// @Tags         history
// @Accept       json
// @Produce      plain
// @Produce      json
// @Produce      xml
// @Security     BearerAuth
// @Param        request body dto.ExportHistoryRequest true "내보내기 요청"
// @Success      200 {file} file "이력 파일 (attachment)"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /history/export [post]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	requesterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ExportHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid user ID")
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	ctx := c.Request.Context()
	result, err := h.historyService.Export(ctx, service.ExportRequest{
		RequesterID:    requesterID,
		TargetAuthorID: targetID,
		From:           req.From,
		To:             req.To,
		Format:         format,
		Meta: map[string]interface{}{
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		},
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	enc := result.Encoder
	defer enc.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", result.ContentType)
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
	header.Set("X-Content-Type-Options", "nosniff")

	var out io.Writer = c.Writer
	var gz *gzip.Writer
	if h.gzip && acceptsGzip(c.Request) {
		header.Set("Content-Encoding", "gzip")
		header.Add("Vary", "Accept-Encoding")
		gz = gzip.NewWriter(c.Writer)
		out = gz
	}
	c.Status(http.StatusOK)

	var streamErr error
	for {
		chunk, err := enc.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if _, err := out.Write(chunk); err != nil {
			streamErr = fmt.Errorf("write chunk: %w", err)
			break
		}
		if gz != nil {
			if err := gz.Flush(); err != nil {
				streamErr = fmt.Errorf("flush gzip: %w", err)
				break
			}
		}
		c.Writer.Flush()
	}
	if gz != nil {
		// a failed stream still gets a well-formed trailer
		if err := gz.Close(); err != nil && streamErr == nil {
			streamErr = err
		}
	}

	fields := []zap.Field{
		zap.String("record_id", result.Record.ID.String()),
		zap.String("target_author_id", targetID.String()),
		zap.String("format", string(enc.Format())),
		zap.Int("entries", enc.Entries()),
	}
	if streamErr != nil {
		h.logger.Warn("History export stopped early", append(fields, zap.Error(streamErr))...)
		return
	}
	h.logger.Info("History export completed", fields...)
}

// ListDownloads godoc
// @Summary      다운로드 기록 조회
// @Description  사용자가 요청한 이력 내보내기 기록을 요청 시각 순으로 조회합니다
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.DownloadRecordView} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 User ID"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "사용자를 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /downloads/{userId} [get]
func (h *HistoryHandler) ListDownloads(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId", "user ID")
	if !ok {
		return
	}

	views, err := h.downloadService.ListDownloads(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, views)
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			return strings.TrimSpace(strings.ReplaceAll(params, " ", "")) != "q=0"
		}
	}
	return false
}
