package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"comment-history-api/internal/response"
	"comment-history-api/internal/service"
)

type TreeHandler struct {
	treeService service.TreeService
	logger      *zap.Logger
}

func NewTreeHandler(treeService service.TreeService, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree godoc
// @Summary      댓글 트리 조회
// @Description  Root object는 {name, kind, comments}, 댓글은 해당 댓글을 루트로 하는 하위 트리를 반환합니다
// @Tags         comments
// @Produce      json
// @Param        type query string true "Target type" Enums(blog_post, user_page, another_object, comment)
// @Param        obj query string true "Target ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TreeResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      404 {object} response.ErrorResponse "대상을 찾을 수 없음"
// @Failure      503 {object} response.ErrorResponse "저장소 오류"
// @Router       /tree [get]
func (h *TreeHandler) GetTree(c *gin.Context) {
	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	tree, err := h.treeService.GetTree(c.Request.Context(), target)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tree)
}
