package models

// Notification is a fire-and-forget record handed to the notification sink.
// Delivery transport (push, email) is outside this service.
type Notification struct {
	NotificationID string            `dynamodbav:"notificationId" json:"notificationId"` // ✅ Partition Key
	Recipient      string            `dynamodbav:"recipient" json:"recipient"`
	Sender         string            `dynamodbav:"sender,omitempty" json:"sender,omitempty"`
	Type           string            `dynamodbav:"type" json:"type"`
	Title          string            `dynamodbav:"title" json:"title"`
	Message        string            `dynamodbav:"message" json:"message"`
	Data           map[string]string `dynamodbav:"data,omitempty" json:"data,omitempty"`
	Priority       string            `dynamodbav:"priority" json:"priority"` // low, normal, high
	IsRead         bool              `dynamodbav:"isRead" json:"isRead"`
	CreatedAt      string            `dynamodbav:"createdAt" json:"createdAt"`
}

// NotificationsTable is the DynamoDB table name for notifications
const NotificationsTable = "Notifications"
