package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType enumerates the events the system notifies about.
type NotificationType string

const (
	NotificationAnalysisCompleted NotificationType = "analysis_completed"
	NotificationAnalysisFailed    NotificationType = "analysis_failed"
	NotificationReviewDue         NotificationType = "review_due"
	NotificationAssignmentCreated NotificationType = "assignment_created"
)

// Notification is an in-app notification row. Email delivery, when the
// user opted in, happens alongside the insert.
type Notification struct {
	ID     uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type   NotificationType `json:"type" gorm:"type:varchar(50);not null"`

	Title   string         `json:"title" gorm:"type:varchar(255);not null"`
	Body    string         `json:"body" gorm:"type:text"`
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb;default:'{}'"`

	ReadAt *time.Time `json:"read_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewNotification creates an unread notification.
func NewNotification(userID uuid.UUID, typ NotificationType, title, body string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// IsRead reports whether the notification was read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead records the read time.
func (n *Notification) MarkRead() {
	now := time.Now()
	n.ReadAt = &now
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
