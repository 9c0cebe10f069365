package server

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
)

// Handler builds the full HTTP handler: websocket event stream, JSON API,
// and the SPA fallback for the embedded browser UI.
func Handler(staticFS fs.FS, hub *Hub, deps Deps) (http.Handler, error) {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub, deps.Sessions)
	registerAPIRoutes(mux, deps)

	fileServer := http.FileServer(http.FS(staticFS))
	mux.HandleFunc("/", serveSPA(fileServer))

	return recoverPanics(mux, deps.production()), nil
}

// recoverPanics converts an uncaught handler panic into a JSON 500. The
// panic detail is only echoed to the client outside production.
func recoverPanics(next http.Handler, production bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				msg := "internal server error"
				if !production {
					msg = fmt.Sprintf("internal server error: %v", rec)
				}
				writeJSONError(w, http.StatusInternalServerError, msg)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func serveSPA(fileServer http.Handler) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" {
			http.NotFound(w, r)
			return
		}

		cleanPath := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if cleanPath == "." || cleanPath == "" {
			r.URL.Path = "/"
		} else if !strings.Contains(cleanPath, ".") {
			r.URL.Path = "/index.html"
		} else {
			r.URL.Path = "/" + cleanPath
		}

		fileServer.ServeHTTP(w, r)
	}
}
