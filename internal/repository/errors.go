package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
