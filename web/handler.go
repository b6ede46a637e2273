// Package web exposes the page-serving surface and the single message
// endpoint of the HTTP front.
package web

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"webrelay/domain"
	"webrelay/transport"
)

const (
	indexPage   = "index.html"
	messagePage = "message.html"
	errorPage   = "error.html"
)

// Handler holds the read-only dependencies of the HTTP front. Every request
// runs on its own goroutine and nothing here is mutated after construction,
// so request handlers share no state beyond configuration.
type Handler struct {
	root       string // web root holding the pages and the static/ dir
	socketAddr string
	log        *slog.Logger
	send       func(addr string, message domain.Message) error
}

func NewHandler(root, socketAddr string, log *slog.Logger) *Handler {
	return &Handler{
		root:       root,
		socketAddr: socketAddr,
		log:        log,
		send:       transport.Send,
	}
}

// Router wires the page surface and the message endpoint. Anything not
// matched falls through to the error page with a not-found status.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.page(indexPage)).Methods(http.MethodGet)
	r.HandleFunc("/"+indexPage, h.page(indexPage)).Methods(http.MethodGet)
	r.HandleFunc("/"+messagePage, h.page(messagePage)).Methods(http.MethodGet)
	r.HandleFunc("/"+errorPage, h.page(errorPage)).Methods(http.MethodGet)
	r.PathPrefix("/static/").HandlerFunc(h.static).Methods(http.MethodGet)
	r.HandleFunc("/message", h.postMessage).Methods(http.MethodPost)
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.serveErrorPage(w)
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound
	return r
}

// postMessage reads the form body, checks the two required fields and makes
// exactly one delivery attempt to the socket listener. A transport failure
// is logged and swallowed: the browser is redirected home either way, so a
// dead listener stays invisible to the user.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("Reading form body failed", "error", err)
		h.serveErrorPage(w)
		return
	}

	params, err := url.ParseQuery(string(body))
	if err != nil {
		h.log.Error("Decoding form body failed", "error", err)
		h.serveErrorPage(w)
		return
	}

	message := domain.Message{
		Username: params.Get("username"),
		Message:  params.Get("message"),
	}
	if err = message.Validate(); err != nil {
		h.log.Error("Missing required field 'username' or 'message'", "error", err)
		h.serveErrorPage(w)
		return
	}

	if err = h.send(h.socketAddr, message); err != nil {
		h.log.Error("Delivery to socket listener failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.servePage(w, name, http.StatusOK)
	}
}

// servePage sends an HTML page from the web root. Any read failure is a
// not-found, never a fatal error that would stop the server.
func (h *Handler) servePage(w http.ResponseWriter, name string, status int) {
	content, err := os.ReadFile(filepath.Join(h.root, name))
	if err != nil {
		if name == errorPage {
			// The error page itself is missing: nothing nicer left to serve.
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		h.serveErrorPage(w)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = w.Write(content)
}

func (h *Handler) serveErrorPage(w http.ResponseWriter) {
	h.servePage(w, errorPage, http.StatusNotFound)
}

// static serves an asset from the restricted static/ root. The cleaned path
// must stay under that root, otherwise the request gets the error page.
func (h *Handler) static(w http.ResponseWriter, r *http.Request) {
	rel := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if !strings.HasPrefix(rel, "static"+string(filepath.Separator)) {
		h.serveErrorPage(w)
		return
	}

	content, err := os.ReadFile(filepath.Join(h.root, rel))
	if err != nil {
		h.serveErrorPage(w)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(rel, content))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// contentTypeFor prefers the path extension and falls back to content
// sniffing, which itself bottoms out at application/octet-stream.
func contentTypeFor(path string, content []byte) string {
	byExt := mime.TypeByExtension(filepath.Ext(path))
	return lo.Ternary(byExt != "", byExt, mimetype.Detect(content).String())
}
