package telemetry

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// TelemetryMiddleware records request metrics for every routed request
type TelemetryMiddleware struct {
	telemetry *APITelemetry
}

func NewTelemetryMiddleware(telemetry *APITelemetry) *TelemetryMiddleware {
	return &TelemetryMiddleware{telemetry: telemetry}
}

// Middleware is meant for mux.Router.Use so the route template is known
func (tm *TelemetryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		clientIP := remoteIP(r)
		tm.telemetry.RegisterRequest(r.Context(), RequestMetrics{
			Method:       r.Method,
			Endpoint:     endpointFor(r),
			StatusCode:   wrapper.statusCode,
			Duration:     time.Since(start),
			ErrorMessage: errorMessage(wrapper.statusCode),
			ClientIP:     clientIP,
			ClientIPType: NormalizeClientIP(clientIP),
		})
	})
}

// responseWriterWrapper captures the status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}

// endpointFor returns the matched route template, e.g. /cart/items/{productId}
func endpointFor(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// remoteIP expects chi's RealIP middleware to have rewritten RemoteAddr
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func errorMessage(statusCode int) string {
	if statusCode < 400 {
		return ""
	}
	return http.StatusText(statusCode)
}
