package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upload outcomes.
const (
	OutcomeStored     = "stored"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)

// MediaMetrics counts media lifecycle events.
type MediaMetrics struct {
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Counter
	deletes     prometheus.Counter
	ratings     prometheus.Counter
	comments    prometheus.Counter
}

// NewMediaMetrics registers the media metrics on the provided registerer.
func NewMediaMetrics(reg prometheus.Registerer) *MediaMetrics {
	if reg == nil {
		return &MediaMetrics{}
	}
	m := &MediaMetrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by media type and outcome.",
		}, []string{"media_type", "outcome"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_upload_bytes_total",
			Help: "Bytes persisted by successful uploads.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_deletes_total",
			Help: "Media items removed by cascade deletion.",
		}),
		ratings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_ratings_total",
			Help: "Ratings written (inserted or updated).",
		}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_comments_total",
			Help: "Comments created.",
		}),
	}
	reg.MustRegister(m.uploads, m.uploadBytes, m.deletes, m.ratings, m.comments)
	return m
}

// IncUpload records an upload attempt outcome.
func (m *MediaMetrics) IncUpload(mediaType, outcome string, size int64) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(mediaType), outcome).Inc()
	if outcome == OutcomeStored && size > 0 {
		m.uploadBytes.Add(float64(size))
	}
}

func (m *MediaMetrics) IncDelete() {
	if m == nil || m.deletes == nil {
		return
	}
	m.deletes.Inc()
}

func (m *MediaMetrics) IncRating() {
	if m == nil || m.ratings == nil {
		return
	}
	m.ratings.Inc()
}

func (m *MediaMetrics) IncComment() {
	if m == nil || m.comments == nil {
		return
	}
	m.comments.Inc()
}
