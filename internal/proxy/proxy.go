package proxy

import (
	"context"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/shuttle-hq/shuttle-sub002/models"
)

// ServerHeader identifies the platform on every proxied response,
// replacing whatever the user service sent.
const ServerHeader = "shuttle"

// AddressLookup resolves a project name to the container address that
// currently serves it. Only ready projects resolve.
type AddressLookup interface {
	Lookup(project string) (models.TargetAddress, bool)
}

type targetKey struct{}

// Handler routes public traffic by Host header. A request for
// <project>.<fqdn> is forwarded to the project's container; everything
// else is rejected before any backend is contacted.
type Handler struct {
	fqdn     string
	registry AddressLookup
	proxy    *httputil.ReverseProxy
}

// NewHandler builds a proxy handler serving subdomains of fqdn. A nil
// transport uses http.DefaultTransport; tests inject their own.
func NewHandler(fqdn string, registry AddressLookup, transport http.RoundTripper) *Handler {
	h := &Handler{
		fqdn:     strings.TrimPrefix(strings.ToLower(fqdn), "."),
		registry: registry,
	}
	h.proxy = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			addr := req.Context().Value(targetKey{}).(models.TargetAddress)
			req.URL.Scheme = "http"
			req.URL.Host = addr.HostPort()
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Set("Server", ServerHeader)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			log.Printf("proxy: upstream error for %s: %v", req.Host, err)
			writeError(w, http.StatusBadGateway, "project is not responding")
		},
		ErrorLog: log.New(log.Writer(), "proxy: ", log.LstdFlags),
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := h.projectFor(r.Host)
	if !ok {
		writeError(w, http.StatusBadRequest, "host is not served by this gateway")
		return
	}

	addr, ok := h.registry.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "could not find service for host")
		return
	}

	ctx := context.WithValue(r.Context(), targetKey{}, addr)
	h.proxy.ServeHTTP(w, r.WithContext(ctx))
}

// projectFor extracts the project name from a request host. The host
// must be exactly one label under the gateway fqdn.
func (h *Handler) projectFor(host string) (string, bool) {
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		host = hostOnly
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	name, ok := strings.CutSuffix(host, "."+h.fqdn)
	if !ok || name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Server", ServerHeader)
	http.Error(w, msg, code)
}
