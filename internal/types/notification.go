package types

// NotificationType classifies a notification by the event that produced it
type NotificationType string

const (
	NotificationTypePaymentReminder          NotificationType = "PAYMENT_REMINDER"
	NotificationTypeSubscriptionConfirmation NotificationType = "SUBSCRIPTION_CONFIRMATION"
	NotificationTypeDeliveryUpdate           NotificationType = "DELIVERY_UPDATE"
	NotificationTypePaymentConfirmation      NotificationType = "PAYMENT_CONFIRMATION"
	NotificationTypeSubscriptionModification NotificationType = "SUBSCRIPTION_MODIFICATION"
)

func (t NotificationType) String() string {
	return string(t)
}

func (t NotificationType) Validate() error {
	return validateEnum("notification type", t, []NotificationType{
		NotificationTypePaymentReminder,
		NotificationTypeSubscriptionConfirmation,
		NotificationTypeDeliveryUpdate,
		NotificationTypePaymentConfirmation,
		NotificationTypeSubscriptionModification,
	})
}

// NotificationChannel is the medium a notification is delivered through
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "EMAIL"
	NotificationChannelSMS   NotificationChannel = "SMS"
	NotificationChannelPush  NotificationChannel = "PUSH"
	NotificationChannelInApp NotificationChannel = "IN_APP"
)

func (c NotificationChannel) String() string {
	return string(c)
}

func (c NotificationChannel) Validate() error {
	return validateEnum("notification channel", c, []NotificationChannel{
		NotificationChannelEmail,
		NotificationChannelSMS,
		NotificationChannelPush,
		NotificationChannelInApp,
	})
}

// NotificationStatus tracks delivery of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
	NotificationStatusRead    NotificationStatus = "READ"
)

var notificationTransitions = transitionTable[NotificationStatus]{
	NotificationStatusPending: {NotificationStatusSent, NotificationStatusFailed, NotificationStatusRead},
	NotificationStatusSent:    {NotificationStatusRead},
	NotificationStatusFailed:  {NotificationStatusRead},
}

func (s NotificationStatus) String() string {
	return string(s)
}

func (s NotificationStatus) Validate() error {
	return validateEnum("notification status", s, []NotificationStatus{
		NotificationStatusPending,
		NotificationStatusSent,
		NotificationStatusFailed,
		NotificationStatusRead,
	})
}

func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	return notificationTransitions.allows(s, next)
}

func (s NotificationStatus) TransitionTo(next NotificationStatus) (NotificationStatus, error) {
	return notificationTransitions.transition("notification", s, next)
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	*QueryFilter
	UserID     string               `json:"user_id,omitempty" form:"user_id"`
	CustomerID string               `json:"customer_id,omitempty" form:"customer_id"`
	Statuses   []NotificationStatus `json:"statuses,omitempty" form:"statuses"`
	Types      []NotificationType   `json:"types,omitempty" form:"types"`
}

func NewNotificationFilter() *NotificationFilter {
	return &NotificationFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *NotificationFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, t := range f.Types {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
