package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/model"
	"playlist-exporter/infrastructure/filecsv"
	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/usecase"

	"github.com/gin-gonic/gin"
)

type IExportHandler interface {
	ExportCSV(ctx *gin.Context)
	ListRuns(ctx *gin.Context)
	Healthz(ctx *gin.Context)
}

type ExportHandler struct {
	exportUseCase usecase.IExportUseCase
}

func NewExportHandler(exportUseCase usecase.IExportUseCase) IExportHandler {
	return &ExportHandler{exportUseCase: exportUseCase}
}

// ExportCSV handles GET /api/playlists/:playlistId/export
func (h *ExportHandler) ExportCSV(ctx *gin.Context) {
	playlistID := ctx.Param("playlistId")

	result, err := h.exportUseCase.Export(ctx.Request.Context(), playlistID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filecsv.DefaultFileName))
	if result.Cached {
		ctx.Header("X-Export-Cache", "hit")
	}
	ctx.Data(http.StatusOK, filecsv.ContentType, result.CSV)
}

// ListRuns handles GET /api/runs?limit=N
func (h *ExportHandler) ListRuns(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	runs, err := h.exportUseCase.ListRuns(ctx.Request.Context(), limit)
	if err != nil && !errors.Is(err, apperror.ErrStoreDisabled) {
		writeError(ctx, err)
		return
	}
	if runs == nil {
		runs = []model.ScraperRun{}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": runs})
}

// Healthz returns OK for health checks
func (h *ExportHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(ctx *gin.Context, err error) {
	logger.GetLogger().WithFields(map[string]interface{}{
		"path":  ctx.Request.URL.Path,
		"error": err,
	}).Error("Request failed")

	if upstream, ok := apperror.IsUpstream(err); ok {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream error",
			"code":    upstream.Code,
			"message": err.Error(),
		})
		return
	}
	if apperror.IsValidation(err) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "export failed",
		"message": err.Error(),
	})
}
