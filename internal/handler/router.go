package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/listing"
	"github.com/BuzzLyutic/planner-web/internal/metrics"
	"github.com/BuzzLyutic/planner-web/internal/service"
	"github.com/BuzzLyutic/planner-web/internal/session"
)

type Deps struct {
	Store   *session.Store
	Records *service.RecordService
	Lists   *listing.Registry
	Logger  *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	// Вид списков сбрасывается вместе с сессией
	d.Store.OnLogout(d.Lists.Forget)

	auth := NewAuthHandler(d.Store, d.Logger)
	pages := NewPageHandler(d.Store, d.Records, d.Lists, d.Logger)
	api := NewRecordHandler(d.Records, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", staticHandler())

	r.Get("/login", auth.LoginPage)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireSessionAPI(d.Store))
		r.Get("/{kind}", api.List)
		r.Post("/{kind}", api.Create)
		r.Patch("/{kind}/{id}", api.Update)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(d.Store))
		r.Get("/", pages.Hub)
		r.Get("/{kind}", pages.List)
		r.Post("/{kind}", pages.Create)
		r.Post("/{kind}/{id}", pages.Update)
	})

	return r
}
