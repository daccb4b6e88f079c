package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/bbangting/auth/internal/models"
	"github.com/bbangting/auth/internal/mykafka"
)

// KafkaNotifier publishes login events keyed by user id.
type KafkaNotifier struct {
	Producer *mykafka.Producer
}

func (k KafkaNotifier) NotifyLogin(ctx context.Context, u models.User) error {
	return k.Producer.PublishEvent(ctx, strconv.FormatUint(uint64(u.ID), 10), NewLoginEvent(u, time.Now()))
}
