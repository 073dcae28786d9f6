package transport

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/service"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

const (
	imageField  = "image"
	imagesField = "images"
)

// analyzeUpload classifies a single multipart upload in field "image".
func (h *handler) analyzeUpload(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		if isBodyTooLarge(err) {
			fail(c, "request body too large", err)
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	data, err := h.readUpload(fileHeader)
	if err != nil {
		fail(c, "failed to read upload", err)
		return
	}

	result, err := h.classification.Classify(ctx, data)
	if err != nil {
		fail(c, "failed to analyze image", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"filename":   fileHeader.Filename,
		"bytes":      len(data),
		"prediction": result.Prediction,
		"soil":       result.SoilAnalysis.Type,
	}).Info("Erosion analysis completed")

	c.JSON(http.StatusOK, result)
}

func (h *handler) analyzeURL(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req models.AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	result, err := h.classification.ClassifyURL(ctx, req.URL)
	if err != nil {
		fail(c, "failed to analyze image", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	form, err := c.MultipartForm()
	if err != nil {
		if isBodyTooLarge(err) {
			fail(c, "request body too large", err)
			return
		}
		fail(c, "invalid multipart form", apperrors.NewValidationError("expected multipart form data", err))
		return
	}

	headers := form.File[imagesField]
	if len(headers) > service.MaxBatchSize {
		fail(c, "too many images", apperrors.NewValidationError(
			fmt.Sprintf("at most %d images per batch", service.MaxBatchSize), nil))
		return
	}

	images := make([]service.BatchImage, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readUpload(fh)
		if err != nil {
			fail(c, "failed to read upload", err)
			return
		}
		images = append(images, service.BatchImage{Filename: fh.Filename, Data: data})
	}

	items, err := h.classification.ClassifyBatch(ctx, images)
	if err != nil {
		fail(c, "failed to analyze batch", err)
		return
	}
	c.JSON(http.StatusOK, models.BatchResponse{Items: items})
}

// readUpload reads a multipart file and rejects content that is clearly not
// an image. Empty and unrecognised binary payloads go on to the decoder,
// which reports them as undecodable.
func (h *handler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("cannot open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxRequestBodySize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("cannot read uploaded file", err)
	}
	if int64(len(data)) > h.cfg.MaxRequestBodySize {
		return nil, apperrors.NewValidationError("uploaded file is too large", nil)
	}

	if err := checkImageContent(data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkImageContent(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "image/") || detected.Is("application/octet-stream") {
		return nil
	}
	return apperrors.NewUnsupportedMediaError(
		fmt.Sprintf("unsupported content type %s", detected.String()), nil)
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
