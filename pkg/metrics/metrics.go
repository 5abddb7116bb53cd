package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Title generation paths, used as the "path" label on TitlesGenerated.
const (
	TitlePathEntity   = "entity"
	TitlePathTopic    = "topic"
	TitlePathKeyword  = "keyword"
	TitlePathFallback = "fallback"
)

var (
	// SessionsCreated counts sessions created since process start
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roleplay_sessions_created_total",
		Help: "Number of chat sessions created",
	})

	// SessionsEvicted counts sessions dropped by the retention cap
	SessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roleplay_sessions_evicted_total",
		Help: "Number of sessions evicted by the retention cap",
	})

	// MessagesAppended counts messages appended across all sessions
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roleplay_messages_appended_total",
		Help: "Number of messages appended to sessions",
	})

	// TitlesGenerated counts smart titles by the generation path taken
	TitlesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roleplay_titles_generated_total",
		Help: "Number of smart session titles generated, by path",
	}, []string{"path"})

	// ImportFailures counts rejected session imports
	ImportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roleplay_session_import_failures_total",
		Help: "Number of session imports rejected as malformed",
	})
)

// Handler returns a gin handler serving the Prometheus metrics endpoint
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
