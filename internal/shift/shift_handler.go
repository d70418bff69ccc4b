package shift

import (
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

func (h *Handler) CreatePeriod(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req SavePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreatePeriod(c.Request.Context(), companyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) UpdatePeriod(c *gin.Context) {
	companyID := c.GetString("company_id")
	id := c.Param("id")

	var req SavePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdatePeriod(c.Request.Context(), companyID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetPeriods(c *gin.Context) {
	resp, err := h.service.GetPeriods(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CreateShift(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req SaveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateShift(c.Request.Context(), companyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) UpdateShift(c *gin.Context) {
	companyID := c.GetString("company_id")
	id := c.Param("id")

	var req SaveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateShift(c.Request.Context(), companyID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetShifts(c *gin.Context) {
	resp, err := h.service.GetShifts(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetShiftByID(c *gin.Context) {
	resp, err := h.service.GetShiftByID(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AssignShift(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.AssignShift(c.Request.Context(), companyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
