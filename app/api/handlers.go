package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/notify"
	"github.com/lysyi3m/calendar-comb/app/tasks"
)

func NewHandler(calendarCfg *calendar.Config, fetcher tasks.EventFetcher, sink notify.Sink,
	metrics MetricsInterface, version string) *Handler {
	return &Handler{
		calendarCfg: calendarCfg,
		fetcher:     fetcher,
		pipeline:    calendar.NewPipeline(calendarCfg),
		sink:        sink,
		metrics:     metrics,
		version:     version,
		now:         time.Now,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	now := h.now()
	start, end := h.pipeline.Window(now)

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": now.In(h.calendarCfg.Location).Format(time.RFC3339),
		"version":   h.version,
		"sources":   len(h.calendarCfg.Sources),
		"window": windowResponse{
			Start: start,
			End:   end,
		},
	})
}

// GetDigest renders the digest for the current window without delivering it.
func (h *Handler) GetDigest(c *gin.Context) {
	task := tasks.NewDigestTask(h.fetcher, h.pipeline, nil, h.metrics, h.now())
	h.runTask(c, task)
}

func (h *Handler) APISendDigest(c *gin.Context) {
	task := tasks.NewDigestTask(h.fetcher, h.pipeline, h.sink, h.metrics, h.now())
	h.runTask(c, task)
}

func (h *Handler) runTask(c *gin.Context, task *tasks.DigestTask) {
	task.Start()

	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Digest task failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Failed to fetch calendar",
			"details":   err.Error(),
			"id":        task.GetID(),
			"message":   task.Report.Message,
			"delivered": task.Report.Delivered,
		})
		return
	}

	c.JSON(http.StatusOK, newDigestResponse(task.Report, h.calendarCfg.Location))
}
