// Package handlers maps the gateway's HTTP API onto a gateway.Gateway.
//
// Gateway routes speak the gateway's XML dialect under
// /merchants/{merchant_id}. A JSON control API under /__fake lets an
// out-of-process test suite flip the failure mode, reset state between test
// cases and settle transactions.
//
// Error mapping:
//
//   - store.ErrNotFound               → 404 with an empty body, as the gateway does.
//   - declined or rejected operations → 422 api-error-response.
//   - malformed request bodies        → 400.
package handlers

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/models"
	"github.com/robertjwhitney/fake-braintree/store"
)

// Handler holds the dependencies for all gateway HTTP handlers.
type Handler struct {
	log        *slog.Logger
	gw         *gateway.Gateway
	merchantID string
	tracer     trace.Tracer
}

// Option configures a Handler.
type Option func(*Handler)

// WithTracerProvider sets where request spans go. The default is the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Handler) { h.tracer = tp.Tracer(tracerName) }
}

const tracerName = "fake-braintree-http"

// New creates a Handler serving gw for the given merchant id.
func New(log *slog.Logger, gw *gateway.Gateway, merchantID string, opts ...Option) *Handler {
	h := &Handler{
		log:        log,
		gw:         gw,
		merchantID: merchantID,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the full router: gateway API plus control API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(h.trace)
	r.Use(middleware.Compress(5, "application/xml", "application/json"))

	r.Route("/merchants/{merchant_id}", func(r chi.Router) {
		r.Use(h.requireMerchant)

		r.Post("/transactions", h.sale)
		r.Get("/transactions/{id}", h.findTransaction)
		r.Post("/transactions/{id}/refund", h.refund)
		r.Put("/transactions/{id}/void", h.void)
		r.Put("/transactions/{id}/submit_for_settlement", h.submitForSettlement)

		for _, prefix := range []string{"/payment_methods", "/payment_methods/credit_card"} {
			r.Get(prefix+"/{token}", h.findCreditCard)
			r.Put(prefix+"/{token}", h.updateCreditCard)
			r.Delete(prefix+"/{token}", h.deleteCreditCard)
		}
		r.Post("/payment_methods", h.createCreditCard)

		r.Post("/customers", h.createCustomer)
		r.Get("/customers/{id}", h.findCustomer)
		r.Put("/customers/{id}", h.updateCustomer)
		r.Delete("/customers/{id}", h.deleteCustomer)

		r.Post("/subscriptions", h.createSubscription)
		r.Get("/subscriptions/{id}", h.findSubscription)
		r.Put("/subscriptions/{id}", h.updateSubscription)
		r.Put("/subscriptions/{id}/cancel", h.cancelSubscription)
	})

	r.Mount("/__fake", h.controlRoutes())
	return r
}

// cors lets a browser-driven suite served from another origin reach the
// control API.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireMerchant answers 404 for any merchant other than the configured one,
// the way the gateway treats an unknown merchant.
func (h *Handler) requireMerchant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chi.URLParam(r, "merchant_id"); id != h.merchantID {
			h.log.Warn("unknown merchant", "merchant_id", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handler) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.method", r.Method)),
		)
		defer span.End()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", ww.Status()))
	})
}

// annotate tags the request span with the entity being served.
func annotate(r *http.Request, key, value string) {
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String(key, value))
}

// readXML decodes the request body into v. An empty body leaves v untouched.
func readXML(r *http.Request, v any) error {
	err := xml.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeXML serialises v as XML and writes it to w with the given status code.
func writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, xml.Header) //nolint:errcheck
	xml.NewEncoder(w).Encode(v)   //nolint:errcheck
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure answers a declined or rejected operation.
func writeFailure(w http.ResponseWriter, res models.Result) {
	resp := gateway.FailureResponse()
	if res.Errors != nil {
		resp = *res.Errors
	}
	writeXML(w, http.StatusUnprocessableEntity, toXMLErrorResponse(resp))
}

// writeGatewayError maps a gateway error to a response.
func (h *Handler) writeGatewayError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.log.Error("gateway error", "err", err)
	w.WriteHeader(http.StatusInternalServerError)
}
