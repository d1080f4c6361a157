package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-prep/internal/storage"
)

// MountAssets serves the single-page client: /, /styles.css and /script.js.
func MountAssets(r chi.Router, as storage.AssetStore) {
	r.Get("/", serveAsset(as, "index.html"))
	r.Get("/styles.css", serveAsset(as, "styles.css"))
	r.Get("/script.js", serveAsset(as, "script.js"))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serveAsset(as storage.AssetStore, key string) http.HandlerFunc {
	ctype := mime.TypeByExtension(path.Ext(key))
	return func(w http.ResponseWriter, r *http.Request) {
		if as == nil {
			http.NotFound(w, r)
			return
		}
		rc, err := as.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, "asset error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		if ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}
		_, _ = io.Copy(w, rc)
	}
}
