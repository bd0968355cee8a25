package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mediashare-backend/api/controllers"
	"github.com/angelmondragon/mediashare-backend/api/middleware"
	"github.com/angelmondragon/mediashare-backend/internal/auth"
	"github.com/angelmondragon/mediashare-backend/internal/comments"
	"github.com/angelmondragon/mediashare-backend/internal/media"
	"github.com/angelmondragon/mediashare-backend/internal/ratings"
	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
	"github.com/angelmondragon/mediashare-backend/pkg/metrics"
	"github.com/angelmondragon/mediashare-backend/pkg/redis"
)

const uploadsPrefix = "/uploads/"

// UploadDir is the blob store as seen by the router: a directory to serve
// and a health probe.
type UploadDir interface {
	Dir() string
	Ping(ctx context.Context) error
}

// Dependencies carries everything the router wires into handlers. Redis,
// Registry and HTTPMetrics are optional.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Storage     UploadDir
	Redis       *redis.Client
	Users       middleware.UserLookup
	Auth        auth.Service
	Media       media.Service
	Ratings     ratings.Service
	Comments    comments.Service
	Registry    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var limiter interface {
		FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error)
	}
	if deps.Redis != nil {
		limiter = deps.Redis
	}
	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	var storagePinger controllers.Pinger
	if deps.Storage != nil {
		storagePinger = deps.Storage
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg, deps.DB, storagePinger))
		r.Get("/live", controllers.HealthLive(cfg))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if deps.Storage != nil {
		r.Handle(uploadsPrefix+"*", http.StripPrefix(uploadsPrefix, fileServer(deps.Storage.Dir())))
	}

	r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
	r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))

	authenticate := middleware.Auth(cfg.JWT, deps.Users, logg)

	r.Route("/media", func(r chi.Router) {
		r.Get("/", controllers.MediaList(deps.Media, logg))
		r.With(authenticate, middleware.RequireRole(enums.UserRoleCreator, logg)).
			Post("/", controllers.MediaUpload(deps.Media, cfg.Media.MaxUploadBytes(), logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.MediaGet(deps.Media, logg))
			r.With(authenticate).Delete("/", controllers.MediaDelete(deps.Media, logg))

			r.With(authenticate).Post("/ratings", controllers.RatingRate(deps.Ratings, logg))
			r.With(authenticate).Get("/ratings/me", controllers.RatingMine(deps.Ratings, logg))

			r.Get("/comments", controllers.CommentList(deps.Comments, logg))
			r.With(authenticate).Post("/comments", controllers.CommentCreate(deps.Comments, logg))
		})
	})

	return r
}

// fileServer serves blobs from dir without directory listings.
func fileServer(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
