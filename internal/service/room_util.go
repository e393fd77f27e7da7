package service

import (
	"errors"
	"fmt"
)

var (
	ErrOwnerNameRequired = errors.New("owner name is required")
	ErrTooManyBots       = errors.New("bot limit reached for this room")
)

func botName(n int) string {
	return fmt.Sprintf("Bot %d", n)
}
