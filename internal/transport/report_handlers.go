package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anime-shed/erosion-inspector-go/internal/auth"
	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
	"github.com/anime-shed/erosion-inspector-go/pkg/validation"
)

func (h *handler) submitReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	reporterID, _ := auth.GetUserID(c.Request.Context())

	input := models.SubmitReportInput{Description: c.PostForm("description")}
	var err error
	if input.Latitude, err = validation.ParseOptionalFloat("latitude", c.PostForm("latitude")); err != nil {
		fail(c, "invalid report", err)
		return
	}
	if input.Longitude, err = validation.ParseOptionalFloat("longitude", c.PostForm("longitude")); err != nil {
		fail(c, "invalid report", err)
		return
	}
	if input.Timestamp, err = validation.ParseOptionalTimestamp(c.PostForm("timestamp")); err != nil {
		fail(c, "invalid report", err)
		return
	}

	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		if isBodyTooLarge(err) {
			fail(c, "request body too large", err)
			return
		}
		fail(c, "invalid report", apperrors.NewValidationError("No image file provided", err))
		return
	}
	if input.ImageData, err = h.readUpload(fileHeader); err != nil {
		fail(c, "failed to read upload", err)
		return
	}
	input.ImageName = fileHeader.Filename

	report, err := h.reports.Submit(ctx, reporterID, input)
	if err != nil {
		fail(c, "failed to submit report", err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *handler) listReports(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var filter models.ReportFilter
	if raw := c.Query("status"); raw != "" {
		status, err := validation.ParseStatus(raw)
		if err != nil {
			fail(c, "invalid status filter", err)
			return
		}
		filter.Status = status
	}
	filter.ReporterID = c.Query("reporter_id")

	reports, err := h.reports.List(ctx, filter)
	if err != nil {
		fail(c, "failed to list reports", err)
		return
	}

	out := make([]models.Report, len(reports))
	for i, r := range reports {
		out[i] = *r
	}
	c.JSON(http.StatusOK, models.ReportListResponse{Reports: out, Count: len(out)})
}

func (h *handler) reportSummary(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	summary, err := h.reports.Summary(ctx)
	if err != nil {
		fail(c, "failed to summarize reports", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) getReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.reports.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, "failed to load report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) getReportImage(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	data, contentType, err := h.reports.Image(ctx, c.Param("id"))
	if err != nil {
		fail(c, "failed to load report image", err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

func (h *handler) updateReportStatus(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}
	status, err := validation.ParseStatus(string(req.Status))
	if err != nil {
		fail(c, "invalid status", err)
		return
	}

	report, err := h.reports.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		fail(c, "failed to update report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
