package recalc

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go-attend/internal/shared/apperror"
	"go-attend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Longest a status request may block waiting for a terminal batch.
const maxWaitSeconds = 30

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service, rdb ...*redis.Client) *Handler {
	h := &Handler{service: service}
	if len(rdb) > 0 {
		h.rdb = rdb[0]
	}
	return h
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id")
	}
	return actorID
}

func (h *Handler) Trigger(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Trigger(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusAccepted, resp, nil)
}

// GetStatus returns the batch state. With ?wait=N it long-polls up to N
// seconds for a terminal status instead of returning the in-flight state.
func (h *Handler) GetStatus(c *gin.Context) {
	companyID := c.GetString("company_id")
	id := c.Param("id")

	waitSeconds, _ := strconv.Atoi(c.DefaultQuery("wait", "0"))
	if waitSeconds <= 0 {
		resp, err := h.service.GetStatus(c.Request.Context(), companyID, id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp, nil)
		return
	}
	if waitSeconds > maxWaitSeconds {
		waitSeconds = maxWaitSeconds
	}

	resp, err := PollUntilTerminal(c.Request.Context(),
		func(ctx context.Context) (BatchResponse, error) {
			return h.service.GetStatus(ctx, companyID, id)
		},
		PollOptions{Timeout: time.Duration(waitSeconds) * time.Second},
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
