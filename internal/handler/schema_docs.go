package handler

import (
	"comment-history-api/internal/dto"
)

// SchemaDocumentation references DTOs that no endpoint returns directly
// so swag still emits their definitions.
type SchemaDocumentation struct {
	TreeNode       dto.TreeNode       `json:"treeNode"`
	RootTree       dto.RootTree       `json:"rootTree"`
	FirstLevelItem dto.FirstLevelItem `json:"firstLevelItem"`
	TargetView     dto.TargetView     `json:"targetView"`
}

// GetSchemaDocumentation is never routed; it only makes swag parse SchemaDocumentation
// @Summary      Schema Documentation (Not a real endpoint)
// @Description  This endpoint does not exist. It's used to document DTO schemas.
// @Tags         internal
// @Produce      json
// @Success      200 {object} SchemaDocumentation
// @Router       /internal/schemas [get]
func GetSchemaDocumentation() {}
