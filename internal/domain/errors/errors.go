package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrSerialization      = errors.New("serialization failed")
	ErrInvalidEnvelope    = errors.New("invalid notification envelope")
	ErrNotificationFailed = errors.New("notification publish failed")
	ErrEventFailed        = errors.New("event emit failed")
)
