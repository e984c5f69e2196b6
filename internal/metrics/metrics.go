package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadnest_like_toggles_total",
		Help: "Like toggle operations by resulting action.",
	}, []string{"action"})

	RepostToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadnest_repost_toggles_total",
		Help: "Repost toggle operations by resulting action.",
	}, []string{"action"})

	ReportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadnest_report_transitions_total",
		Help: "Report lifecycle transitions by target status.",
	}, []string{"to"})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadnest_notifications_emitted_total",
		Help: "Notification records created by type.",
	}, []string{"type"})

	LiveDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadnest_live_deliveries_total",
		Help: "Live delivery attempts by result (sent, offline, failed).",
	}, []string{"result"})
)

// Handler serves the Prometheus registry through Fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
