package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go-resume-screener/pkg/logger"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
	EventUploadLimitTriggered EventType = "upload_limit_triggered"
	EventUnauthorizedAccess   EventType = "unauthorized_access"
	EventValidationFailed     EventType = "validation_failed"
	EventDataExport           EventType = "data_export"
)

// Severity is derived from the EventType, never supplied by the caller.
type Severity string

const (
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventDataExport:           SeverityMEDIUM,
	EventRateLimitTriggered:   SeverityWARN,
	EventUploadLimitTriggered: SeverityWARN,
	EventValidationFailed:     SeverityWARN,
	EventUnauthorizedAccess:   SeverityHIGH,
}

// GetSeverity returns the severity for an event type, MEDIUM when unmapped.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// SecurityEvent is one audit record. SubjectValue is hashed before it is
// written unless the subject is an IP.
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "ip", "user_id", "job_id"
	SubjectValue string
	IP           string
	RequestID    string
	Details      map[string]interface{}
}

// AuditLogger writes security events to the service log under a fixed
// "audit" component so they can be filtered downstream.
type AuditLogger struct {
	log *logger.Logger
}

func NewAuditLogger(log *logger.Logger) *AuditLogger {
	return &AuditLogger{log: log.With("component", "audit")}
}

func (a *AuditLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	severity := GetSeverity(event.Event)

	kv := []interface{}{
		"event", string(event.Event),
		"severity", string(severity),
		"at", event.Timestamp,
	}
	if event.SubjectType != "" {
		kv = append(kv, "subject_type", event.SubjectType, "subject", maskValue(event.SubjectType, event.SubjectValue))
	}
	if event.IP != "" {
		kv = append(kv, "ip", event.IP)
	}
	if event.RequestID != "" {
		kv = append(kv, "request_id", event.RequestID)
	}
	for k, v := range event.Details {
		kv = append(kv, k, v)
	}

	switch severity {
	case SeverityINFO:
		a.log.Info("security event", kv...)
	case SeverityHIGH:
		a.log.Error("security event", kv...)
	default:
		a.log.Warn("security event", kv...)
	}
}

// HashValue returns the first 16 hex chars of the SHA-256 of value.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "ip", "job_id":
		return value
	default:
		return HashValue(value)
	}
}
