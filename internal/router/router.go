package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/blueblud7/dailyYoutubeSummary/internal/handlers"
	"github.com/blueblud7/dailyYoutubeSummary/internal/middleware"
)

func New(
	collectionHandler *handlers.CollectionHandler,
	reportHandler *handlers.ReportHandler,
	influencerHandler *handlers.InfluencerHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Collection triggers fan out into quota-limited API calls (5 req/min per IP)
	collectLimiter := middleware.NewRateLimiter(5, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Collection Routes ────
		r.Route("/collection", func(r chi.Router) {
			r.Get("/status", collectionHandler.Status)
			r.Get("/channels", collectionHandler.ListChannels)
			r.Get("/keywords", collectionHandler.ListKeywords)
			r.Get("/videos", collectionHandler.ListVideos)
			r.Delete("/channels/{id}", collectionHandler.RemoveChannel)
			r.Delete("/keywords/{keyword}", collectionHandler.RemoveKeyword)

			r.Group(func(r chi.Router) {
				r.Use(collectLimiter.Middleware)
				r.Post("/channels", collectionHandler.AddChannels)
				r.Post("/keywords", collectionHandler.AddKeywords)
				r.Post("/run", collectionHandler.Run)
				r.Post("/rescore", collectionHandler.Rescore)
			})
		})

		// ──── Influencer Routes ────
		r.Route("/influencers", func(r chi.Router) {
			r.Get("/", influencerHandler.List)
			r.Post("/", influencerHandler.Add)
		})

		// ──── Report Routes ────
		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", reportHandler.Daily)
			r.Get("/weekly", reportHandler.Weekly)
			r.Post("/keyword", reportHandler.Keyword)
			r.Post("/channel", reportHandler.Channel)
			r.Post("/influencer", reportHandler.Influencer)
			r.Post("/perspective", reportHandler.Perspective)
			r.Post("/multi", reportHandler.Multi)
			r.Get("/hot", reportHandler.Hot)
			r.Get("/trend", reportHandler.Trend)
			r.Get("/history", reportHandler.History)
			r.Get("/{id}", reportHandler.Get)
		})
	})

	return r
}
