package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/service"
	"github.com/gin-gonic/gin"
)

type PerformanceHandler struct {
	service *service.PerformanceService
}

func NewPerformanceHandler(service *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

func (h *PerformanceHandler) parseFilter(c *gin.Context) domain.PerformanceFilter {
	filter := domain.PerformanceFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if date := strings.TrimSpace(c.Query("date")); date != "" {
		filter.Date = date
	}

	if urgency := strings.TrimSpace(c.Query("urgency")); urgency != "" {
		filter.Urgency = strings.ToUpper(urgency)
	}

	parseList := func(param string) []string {
		values := c.QueryArray(param)
		if len(values) == 0 {
			if single := strings.TrimSpace(c.Query(param)); single != "" {
				values = []string{single}
			}
		}

		// Support both repeated params and comma-separated strings:
		//   ?categories=a&categories=b
		//   ?categories=a,b
		var result []string
		seen := make(map[string]struct{})
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				part = strings.ToLower(strings.TrimSpace(part))
				if part == "" {
					continue
				}
				if _, ok := seen[part]; ok {
					continue
				}
				seen[part] = struct{}{}
				result = append(result, part)
			}
		}
		return result
	}

	filter.Categories = parseList("categories")
	filter.SKUs = parseList("skus")

	return filter
}

func (h *PerformanceHandler) GetRecords(c *gin.Context) {
	filter := h.parseFilter(c)
	records, total, err := h.service.GetRecords(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
	})
}

func (h *PerformanceHandler) GetSummary(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		dates, err := h.service.GetAvailableDates(c.Request.Context(), 1)
		if err != nil || len(dates) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no performance data available"})
			return
		}
		date = dates[0].Format("2006-01-02")
	}

	summary, err := h.service.GetSummary(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *PerformanceHandler) DeleteDate(c *gin.Context) {
	date := strings.TrimSpace(c.Param("date"))
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date parameter is required"})
		return
	}

	deleted, err := h.service.DeleteDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete date", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "deleted": deleted})
}

func (h *PerformanceHandler) GetAvailableDates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if limit <= 0 {
		limit = 30
	}

	dates, err := h.service.GetAvailableDates(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch available dates", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
