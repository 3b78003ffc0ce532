package service

import (
	"context"
	"testing"

	"github.com/naasdev/naas/internal/domain/customer"
	domainNotification "github.com/naasdev/naas/internal/domain/notification"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/notification"
	"github.com/naasdev/naas/internal/testutil"
	"github.com/naasdev/naas/internal/types"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service NotificationService
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewNotificationService(s.params)
}

// rejectingSender fails every delivery
type rejectingSender struct{}

func (rejectingSender) Send(context.Context, *domainNotification.Notification, *customer.Customer) error {
	return ierr.NewError("mailbox unavailable").Mark(ierr.ErrSystem)
}

func (s *NotificationServiceSuite) TestNotify() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)

	n, err := s.service.Notify(s.GetContext(), c, types.NotificationTypeDeliveryUpdate, "Delivery resumes tomorrow.")
	s.NoError(err)
	s.Equal(types.NotificationStatusPending, n.Status)
	s.Equal(types.NotificationChannelEmail, n.Channel)
	s.Equal(c.UserID, n.UserID)
	s.Equal(c.ID, n.CustomerID)

	msgs := s.GetPubSub().GetMessages(s.GetConfig().Notification.Topic)
	s.Require().Len(msgs, 1)
	s.Equal(n.ID, msgs[0].UUID)
	s.Equal(notification.EventNameCreated, msgs[0].Metadata.Get("event_name"))
}

func (s *NotificationServiceSuite) TestNotify_CustomerWithoutUser() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Walk-in", types.CustomerStatusActive)
	c.UserID = ""

	n, err := s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentReminder, "Pay soon.")
	s.NoError(err)
	s.Empty(n.UserID)
	s.Equal(c.ID, n.CustomerID)
}

func (s *NotificationServiceSuite) TestListNotifications_ScopedToCaller() {
	mine := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	theirs := createTestCustomer(&s.BaseServiceTestSuite, "Ravi", types.CustomerStatusActive)
	theirs.UserID = "another-user"

	_, err := s.service.Notify(s.GetContext(), mine, types.NotificationTypePaymentReminder, "mine")
	s.NoError(err)
	_, err = s.service.Notify(s.GetContext(), theirs, types.NotificationTypePaymentReminder, "theirs")
	s.NoError(err)

	// asking for someone else's notifications still yields only the caller's
	filter := types.NewNotificationFilter()
	filter.UserID = "another-user"

	resp, err := s.service.ListNotifications(s.GetContext(), filter)
	s.NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("mine", resp.Items[0].Content)
	s.Equal(1, resp.Pagination.Total)
}

func (s *NotificationServiceSuite) TestMarkRead() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	n, err := s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentReminder, "Pay soon.")
	s.NoError(err)

	resp, err := s.service.MarkRead(s.GetContext(), n.ID)
	s.NoError(err)
	s.Equal(types.NotificationStatusRead, resp.Status)

	// reading twice is harmless
	resp, err = s.service.MarkRead(s.GetContext(), n.ID)
	s.NoError(err)
	s.Equal(types.NotificationStatusRead, resp.Status)
}

func (s *NotificationServiceSuite) TestMarkRead_OtherUsersNotification() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Ravi", types.CustomerStatusActive)
	c.UserID = "another-user"
	n, err := s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentReminder, "Pay soon.")
	s.NoError(err)

	_, err = s.service.MarkRead(s.GetContext(), n.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	stored, err := s.GetStores().NotificationRepo.Get(s.GetContext(), n.ID)
	s.NoError(err)
	s.Equal(types.NotificationStatusPending, stored.Status)
}

func (s *NotificationServiceSuite) TestMarkRead_NotFound() {
	_, err := s.service.MarkRead(s.GetContext(), "missing")
	s.True(ierr.IsNotFound(err))
}

func (s *NotificationServiceSuite) TestDispatchPending() {
	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	first, err := s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentReminder, "one")
	s.NoError(err)
	_, err = s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentConfirmation, "two")
	s.NoError(err)

	resp, err := s.service.DispatchPending(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Processed)
	s.Equal(2, resp.Sent)
	s.Equal(0, resp.Failed)

	stored, err := s.GetStores().NotificationRepo.Get(s.GetContext(), first.ID)
	s.NoError(err)
	s.Equal(types.NotificationStatusSent, stored.Status)
	s.Require().NotNil(stored.SentAt)
	s.Equal(s.GetNow(), *stored.SentAt)

	// nothing left to send
	resp, err = s.service.DispatchPending(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.Processed)
}

func (s *NotificationServiceSuite) TestDispatchPending_RecordsFailures() {
	senders := notification.NewSenders(nil, s.GetLogger())
	senders.Register(types.NotificationChannelEmail, rejectingSender{})
	s.params.Dispatcher = notification.NewDispatcher(
		s.GetStores().NotificationRepo,
		s.GetStores().CustomerRepo,
		senders,
		s.GetClock(),
		s.GetMetrics(),
		s.GetLogger(),
	)
	s.service = NewNotificationService(s.params)

	c := createTestCustomer(&s.BaseServiceTestSuite, "Asha", types.CustomerStatusActive)
	n, err := s.service.Notify(s.GetContext(), c, types.NotificationTypePaymentReminder, "one")
	s.NoError(err)

	resp, err := s.service.DispatchPending(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.Processed)
	s.Equal(0, resp.Sent)
	s.Equal(1, resp.Failed)

	stored, err := s.GetStores().NotificationRepo.Get(s.GetContext(), n.ID)
	s.NoError(err)
	s.Equal(types.NotificationStatusFailed, stored.Status)
	s.Nil(stored.SentAt)
}
