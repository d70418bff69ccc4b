package attendance

import (
	"context"
	"net/http"

	"go-attend/internal/shared/apperror"
	"go-attend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetRecords(c *gin.Context) {
	var q ListRecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	records, meta, err := h.service.GetRecords(c.Request.Context(), c.GetString("company_id"), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, records, meta)
}

func (h *Handler) GetRecordByID(c *gin.Context) {
	resp, err := h.service.GetRecordByID(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SupplementCheckIn(c *gin.Context) {
	h.supplement(c, h.service.SupplementCheckIn)
}

func (h *Handler) SupplementCheckOut(c *gin.Context) {
	h.supplement(c, h.service.SupplementCheckOut)
}

func (h *Handler) supplement(c *gin.Context, fn func(ctx context.Context, companyID, recordID, operatorID string, req SupplementRequest) (RecordResponse, error)) {
	var req SupplementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := fn(
		c.Request.Context(),
		c.GetString("company_id"),
		c.Param("id"),
		c.GetString("user_id"),
		req,
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) IngestPunch(c *gin.Context) {
	var req IngestPunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.IngestPunch(c.Request.Context(), c.GetString("company_id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}
