package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/model"
	"rosterlens/internal/store"
)

// BuildActionPlan 由请求体中的校验结果直接生成整改计划
// POST /api/action-plan?question=...&hasHistory=true
func (h *Handler) BuildActionPlan(c *gin.Context) {
	var v model.ValidationResult
	if err := c.ShouldBindJSON(&v); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	h.writePlan(c, &v)
}

// SaveValidation 保存外部校验结果
// POST /api/validations
func (h *Handler) SaveValidation(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var v model.ValidationResult
	if err := c.ShouldBindJSON(&v); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	id, err := h.store.SaveValidation(&v)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeStoreError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"validationId": id})
}

// ListValidations 最近保存的校验结果
// GET /api/validations?limit=N
func (h *Handler) ListValidations(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	list, err := h.store.ListValidations(queryLimit(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeStoreError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "total": len(list)})
}

// GetValidation 读取校验结果
// GET /api/validations/:id
func (h *Handler) GetValidation(c *gin.Context) {
	if v, ok := h.loadValidation(c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// DeleteValidation 删除校验结果
// DELETE /api/validations/:id
func (h *Handler) DeleteValidation(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	if err := h.store.DeleteValidation(c.Param("id")); err != nil {
		h.storeFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetValidationActionPlan 为已保存的校验结果生成整改计划
// GET /api/validations/:id/action-plan?question=...&hasHistory=true
func (h *Handler) GetValidationActionPlan(c *gin.Context) {
	if v, ok := h.loadValidation(c); ok {
		h.writePlan(c, v)
	}
}

// writePlan 按提问和会话历史判断是否追问，由附带策略决定返回计划还是 null
func (h *Handler) writePlan(c *gin.Context, v *model.ValidationResult) {
	question := c.Query("question")
	hasHistory := false
	if raw := c.Query("hasHistory"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, CodeInvalidRequest, "hasHistory must be a boolean, got '"+raw+"'")
			return
		}
		hasHistory = b
	}
	followUp := actionplan.IsFollowUp(question, hasHistory)
	c.JSON(http.StatusOK, h.plans.BuildFor(v, question, followUp))
}

func (h *Handler) loadValidation(c *gin.Context) (*model.ValidationResult, bool) {
	if !h.requireStore(c) {
		return nil, false
	}
	v, err := h.store.GetValidation(c.Param("id"))
	if err != nil {
		h.storeFailure(c, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) storeFailure(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	fail(c, http.StatusInternalServerError, CodeStoreError, err.Error())
}
