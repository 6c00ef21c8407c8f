package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/lumenbrowser/lumen/internal/user"
)

// NewRouter creates a chi router with the per-profile API mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(reg *user.Registry, authEnabled bool, token string) chi.Router {
	h := NewHandler(reg)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Profile lifecycle.
	r.Post("/users", h.OpenUser)
	r.Get("/users", h.ListUsers)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Delete("/", h.CloseUser)

		// History.
		r.Get("/history", h.ListHistory)
		r.Get("/history/groups", h.ListHistoryGroups)
		r.Post("/history", h.AddHistory)
		r.Delete("/history/{id}", h.RemoveHistory)

		// Bookmarks.
		r.Get("/bookmarks", h.ListBookmarks)
		r.Post("/bookmarks", h.AddBookmark)
		r.Patch("/bookmarks/{id}", h.UpdateBookmark)
		r.Delete("/bookmarks/{id}", h.RemoveBookmark)

		// Downloads.
		r.Get("/downloads", h.ListDownloads)
		r.Get("/downloads/groups", h.ListDownloadGroups)
		r.Post("/downloads", h.AddDownload)
		r.Patch("/downloads/{id}", h.UpdateDownload)
		r.Delete("/downloads/{id}", h.RemoveDownload)

		// Sites.
		r.Get("/sites", h.ListSites)
		r.Get("/sites/permission", h.GetSitePermission)
		r.Get("/sites/content", h.GetSiteContent)
		r.Post("/sites", h.AddSite)
		r.Patch("/sites/{id}", h.UpdateSite)
		r.Delete("/sites/{id}", h.RemoveSite)

		// Extension capability.
		r.Get("/extensions", h.ListExtensions)
	})

	return r
}
