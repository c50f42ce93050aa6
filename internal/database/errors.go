package database

import "errors"

var (
	// ErrNotFound - заявка с указанным ID отсутствует в хранилище
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition - статус уже покинул pending, повторный переход запрещен
	ErrInvalidTransition = errors.New("booking status is no longer pending")

	// ErrNotConfirmed - этапы мойки доступны только для подтвержденных заявок
	ErrNotConfirmed = errors.New("booking is not confirmed")

	ErrUnknownStage  = errors.New("unknown cleaning stage")
	ErrUnknownStatus = errors.New("unknown target status")
	ErrRateLimited   = errors.New("too many booking attempts")
)
