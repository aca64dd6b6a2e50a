package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haven_logins_total",
		Help: "Total number of successful logins",
	})
	loginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haven_login_failures_total",
		Help: "Total number of rejected login attempts",
	})
	sessionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haven_sessions_expired_total",
		Help: "Total number of sessions cleared by the idle timeout",
	})
	auditWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haven_audit_write_failures_total",
		Help: "Total number of audit-log writes that failed",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(loginsTotal, loginFailuresTotal, sessionsExpiredTotal, auditWriteFailuresTotal)
}

// IncLogin increments the successful login counter.
func IncLogin() { loginsTotal.Inc() }

// IncLoginFailure increments the rejected login counter.
func IncLoginFailure() { loginFailuresTotal.Inc() }

// IncSessionExpired increments the idle-timeout counter.
func IncSessionExpired() { sessionsExpiredTotal.Inc() }

// IncAuditWriteFailure increments the failed audit write counter.
func IncAuditWriteFailure() { auditWriteFailuresTotal.Inc() }
