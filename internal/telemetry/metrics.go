package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/moontravel"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Authentication metrics
	SignupsTotal       metric.Int64Counter
	LoginAttemptsTotal metric.Int64Counter
	LogoutsTotal       metric.Int64Counter
	PasswordHashTime   metric.Float64Histogram

	// Authorization metrics
	AuthzDecisionsTotal metric.Int64Counter

	// Housekeeping metrics
	SessionsSweptTotal metric.Int64Counter
	TokensSweptTotal   metric.Int64Counter

	// Audit metrics
	AuditWriteErrorsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider())
	})
	return metrics
}

// NewMetrics creates the instruments on provider.
func NewMetrics(provider metric.MeterProvider) *Metrics {
	meter := provider.Meter(meterName)

	m := &Metrics{}

	m.SignupsTotal, _ = meter.Int64Counter(
		"moontravel.auth.signups.total",
		metric.WithDescription("Total number of signup attempts by role and outcome"),
		metric.WithUnit("{signup}"),
	)

	m.LoginAttemptsTotal, _ = meter.Int64Counter(
		"moontravel.auth.logins.total",
		metric.WithDescription("Total number of login attempts by outcome"),
		metric.WithUnit("{login}"),
	)

	m.LogoutsTotal, _ = meter.Int64Counter(
		"moontravel.auth.logouts.total",
		metric.WithDescription("Total number of logouts"),
		metric.WithUnit("{logout}"),
	)

	m.PasswordHashTime, _ = meter.Float64Histogram(
		"moontravel.auth.password_hash.duration",
		metric.WithDescription("Duration of password hash and verify operations"),
		metric.WithUnit("ms"),
	)

	m.AuthzDecisionsTotal, _ = meter.Int64Counter(
		"moontravel.authz.decisions.total",
		metric.WithDescription("Total number of authorization gate decisions by required role and outcome"),
		metric.WithUnit("{decision}"),
	)

	m.SessionsSweptTotal, _ = meter.Int64Counter(
		"moontravel.sweeper.sessions.total",
		metric.WithDescription("Total number of expired sessions deleted"),
		metric.WithUnit("{session}"),
	)

	m.TokensSweptTotal, _ = meter.Int64Counter(
		"moontravel.sweeper.tokens.total",
		metric.WithDescription("Total number of expired tokens deleted"),
		metric.WithUnit("{token}"),
	)

	m.AuditWriteErrorsTotal, _ = meter.Int64Counter(
		"moontravel.audit.write_errors.total",
		metric.WithDescription("Total number of audit entries that failed to persist"),
		metric.WithUnit("{error}"),
	)

	return m
}

// RecordSignup counts a signup attempt.
func (m *Metrics) RecordSignup(ctx context.Context, role, outcome string) {
	m.SignupsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("outcome", outcome),
	))
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLogout counts a logout.
func (m *Metrics) RecordLogout(ctx context.Context) {
	m.LogoutsTotal.Add(ctx, 1)
}

// RecordPasswordHash records how long a bcrypt operation took.
func (m *Metrics) RecordPasswordHash(ctx context.Context, op string, d time.Duration) {
	m.PasswordHashTime.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attribute.String("op", op)))
}

// RecordDecision counts an authorization gate decision.
func (m *Metrics) RecordDecision(ctx context.Context, requiredRole, outcome string) {
	m.AuthzDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("required_role", requiredRole),
		attribute.String("outcome", outcome),
	))
}

// RecordSweep counts credentials removed by one sweep.
func (m *Metrics) RecordSweep(ctx context.Context, sessions, tokens int) {
	m.SessionsSweptTotal.Add(ctx, int64(sessions))
	m.TokensSweptTotal.Add(ctx, int64(tokens))
}

// RecordAuditWriteError counts an audit entry that could not be stored.
func (m *Metrics) RecordAuditWriteError(ctx context.Context, eventType string) {
	m.AuditWriteErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
