package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/response"
	"comment-history-api/internal/service"
)

type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// CreateComment godoc
// @Summary      댓글 작성
// @Description  Root object(blog_post, user_page, another_object) 또는 다른 댓글에 댓글을 작성합니다
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateCommentRequest true "댓글 작성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentCreatedResponse} "댓글 작성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "대상을 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	target, err := domain.NewTargetRef(req.TargetType, req.TargetID)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, target, req.Text)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, dto.CommentCreatedResponse{CommentID: comment.ID})
}

// UpdateComment godoc
// @Summary      댓글 수정
// @Description  댓글 내용을 수정합니다. 내용이 같으면 아무것도 기록하지 않습니다
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        commentId path string true "Comment ID (UUID)"
// @Param        request body dto.UpdateCommentRequest true "댓글 수정 요청"
// @Success      200 {object} response.SuccessResponse "댓글 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "댓글을 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /comments/{commentId} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(c, "commentId", "comment ID")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	if err := h.commentService.EditComment(c.Request.Context(), userID, commentID, req.Text); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}

// DeleteComment godoc
// @Summary      댓글 삭제
// @Description  답글이 없는 댓글만 삭제할 수 있습니다
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        commentId path string true "Comment ID (UUID)"
// @Success      200 {object} response.SuccessResponse "댓글 삭제 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 Comment ID"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      404 {object} response.ErrorResponse "댓글을 찾을 수 없음"
// @Failure      412 {object} response.ErrorResponse "답글이 있는 댓글"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(c, "commentId", "comment ID")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}

// ListFirstLevel godoc
// @Summary      1단계 댓글 페이지 조회
// @Description  대상의 직계 댓글을 작성 순으로 페이지 단위로 조회합니다. 범위를 넘는 page는 마지막 페이지로 조정됩니다
// @Tags         comments
// @Produce      json
// @Param        page path int true "Page (1부터 시작)"
// @Param        type query string true "Target type" Enums(blog_post, user_page, another_object, comment)
// @Param        obj query string true "Target ID (UUID)"
// @Param        pageSize query int false "Page size"
// @Success      200 {object} response.SuccessResponse{data=dto.FirstLevelPage} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      404 {object} response.ErrorResponse "대상을 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /first-level/{page} [get]
func (h *CommentHandler) ListFirstLevel(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Page must be a positive integer")
		return
	}

	pageSize := 0
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "pageSize must be a positive integer")
			return
		}
	}

	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	result, err := h.commentService.ListFirstLevel(c.Request.Context(), target, page, pageSize)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// targetFromQuery reads ?type=&obj=, answering 400 when either is missing or malformed
func targetFromQuery(c *gin.Context) (domain.TargetRef, bool) {
	kind, obj := c.Query("type"), c.Query("obj")
	if kind == "" || obj == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Query parameters type and obj are required")
		return domain.TargetRef{}, false
	}
	target, err := domain.NewTargetRef(kind, obj)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, err.Error())
		return domain.TargetRef{}, false
	}
	return target, true
}
