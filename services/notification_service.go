package services

import (
	"context"
	"fmt"
	"time"

	"roomly_server/models"

	"github.com/google/uuid"
)

// DynamoNotificationService is the NotificationSink writing to the
// Notifications table. Callers treat it as fire-and-forget.
type DynamoNotificationService struct {
	Dynamo *DynamoService
}

// Create stores a notification record, assigning id/priority/timestamp
// defaults.
func (ns *DynamoNotificationService) Create(ctx context.Context, notification models.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = uuid.NewString()
	}
	if notification.Priority == "" {
		notification.Priority = models.PriorityNormal
	}
	if notification.CreatedAt == "" {
		notification.CreatedAt = time.Now().UTC().Format(models.TimestampFormat)
	}

	if err := ns.Dynamo.PutItem(ctx, models.NotificationsTable, notification); err != nil {
		return fmt.Errorf("failed to create notification for %s: %w", notification.Recipient, err)
	}
	return nil
}

// DynamoAuditReporter writes match report audit records to the Reports table.
type DynamoAuditReporter struct {
	Dynamo *DynamoService
}

// Create stores an audit report record.
func (ar *DynamoAuditReporter) Create(ctx context.Context, report models.MatchReportRecord) error {
	if report.ReportID == "" {
		report.ReportID = uuid.NewString()
	}
	if report.CreatedAt == "" {
		report.CreatedAt = time.Now().UTC().Format(models.TimestampFormat)
	}

	if err := ar.Dynamo.PutItem(ctx, models.ReportsTable, report); err != nil {
		return fmt.Errorf("failed to create report for match %s: %w", report.MatchID, err)
	}
	return nil
}
