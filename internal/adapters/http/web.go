package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"arena/internal/adapters/http/middleware"
	"arena/internal/adapters/http/perf"
	attendanceStore "arena/internal/adapters/storage/attendance"
	enrollmentStore "arena/internal/adapters/storage/enrollment"
	invoiceStore "arena/internal/adapters/storage/invoice"
	memberStore "arena/internal/adapters/storage/member"
	outboxStore "arena/internal/adapters/storage/outbox"
	paymentStore "arena/internal/adapters/storage/payment"
	"arena/internal/application/orchestrators"
	"arena/internal/domain/calendar"
	"arena/internal/domain/payment"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore     memberStore.Store
	AttendanceStore attendanceStore.Store
	PaymentStore    paymentStore.Store
	InvoiceStore    invoiceStore.Store
	EnrollmentStore enrollmentStore.Store
	OutboxStore     outboxStore.Store
}

// Settings carries the runtime configuration the handlers read.
type Settings struct {
	Clock          calendar.Clock
	Fees           payment.FeeSchedule
	InactivityDays int
	BatchCapacity  map[string]int

	MinAppVersion string
	APIVersion    string

	// CSRFKey is 32 bytes; empty generates a per-process key.
	CSRFKey            []byte
	SecureCookies      bool
	RateLimitPerSecond int
	SlowRequest        time.Duration

	Notifier  orchestrators.Notifier
	Executors map[string]orchestrators.ActionExecutor
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global settings (set by NewMux)
var settings Settings

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond is used when Settings leaves it unset. Tests can increase this.
var RateLimitPerSecond = 20

// csrfKey returns the configured key, or a random one that won't survive a restart.
func csrfKey(configured []byte) []byte {
	if len(configured) == 32 {
		return configured
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("csrf_key_generated", "detail", "using random CSRF key; set GYM_CSRF_KEY for production")
	return key
}

// NewMux wires HTTP handlers for the app. ctx bounds the background
// housekeeping of the rate limiter.
func NewMux(ctx context.Context, s *Stores, cfg Settings, collector *perf.Collector) http.Handler {
	stores = s
	settings = cfg
	settings.BatchCapacity = maps.Clone(cfg.BatchCapacity)
	perfCollector = collector
	if settings.InactivityDays <= 0 {
		settings.InactivityDays = orchestrators.DefaultInactivityDays
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := cfg.RateLimitPerSecond
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	// Apply middleware: Timing -> CORS -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey(cfg.CSRFKey), cfg.SecureCookies),
		middleware.RateLimit(limiter),
		middleware.CORS,
		middleware.Timing(collector, cfg.SlowRequest),
	)
}
