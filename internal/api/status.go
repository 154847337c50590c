package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status        string `json:"status"`        // ok | degraded
	StoreEnabled  bool   `json:"storeEnabled"`  // 是否配置了校验结果存储
	StoreHealthy  bool   `json:"storeHealthy"`  // 存储连接是否可用
	UptimeSeconds int64  `json:"uptimeSeconds"` // 运行时长
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:        "ok",
		StoreEnabled:  h.store != nil,
		UptimeSeconds: int64(time.Since(h.startedAt) / time.Second),
	}
	if h.store != nil {
		resp.StoreHealthy = h.store.Ping() == nil
		if !resp.StoreHealthy {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}
