package bus

import (
	"context"

	"github.com/identity-platform/profile-saga/internal/domain/message"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_bus.go

type Publisher interface {
	Publish(ctx context.Context, msgs ...message.Message) error
}
