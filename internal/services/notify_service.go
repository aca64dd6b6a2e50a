package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/havenhq/haven/backend/internal/logger"
)

// NotifyService pushes security-relevant events (lockouts, password resets)
// to an operator channel via a shoutrrr URL. Sends are fire-and-forget; a
// missing URL disables the service entirely.
type NotifyService struct {
	url string
}

func NewNotifyService(url string) *NotifyService {
	return &NotifyService{url: url}
}

// Send delivers a message if a notification URL is configured. Errors are
// logged, never returned.
func (s *NotifyService) Send(title, message string) {
	if s.url == "" {
		return
	}
	if err := shoutrrr.Send(s.url, fmt.Sprintf("%s: %s", title, message)); err != nil {
		logger.Log().WithError(err).Warn("notification send failed")
	}
}
