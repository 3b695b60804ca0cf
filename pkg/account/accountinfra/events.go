package accountinfra

import (
	"context"
	"encoding/json"

	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// AccountDeletionChannel is the pub/sub channel other services publish
// account-deletion events on.
const AccountDeletionChannel = "accounts_deleted"

type accountDeletionEvent struct {
	Gamespace     kernel.GamespaceID `json:"gamespace"`
	Accounts      []kernel.AccountID `json:"accounts"`
	GamespaceOnly bool               `json:"gamespace_only"`
}

// DeletionHandler is the service-side reaction to a deletion event.
type DeletionHandler interface {
	AccountsDeleted(ctx context.Context, gamespace kernel.GamespaceID, accounts []kernel.AccountID, gamespaceOnly bool) error
}

// DeletionSubscriber listens for account-deletion events and cascades them
// into the account store.
type DeletionSubscriber struct {
	rdb     *redis.Client
	handler DeletionHandler
}

func NewDeletionSubscriber(rdb *redis.Client, handler DeletionHandler) *DeletionSubscriber {
	return &DeletionSubscriber{rdb: rdb, handler: handler}
}

// Run blocks consuming events until ctx is cancelled. Malformed or failing
// events are logged and skipped, the subscription stays up.
func (s *DeletionSubscriber) Run(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, AccountDeletionChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event accountDeletionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logx.Warnf("dropping malformed account deletion event: %v", err)
				continue
			}
			if err := s.handler.AccountsDeleted(ctx, event.Gamespace, event.Accounts, event.GamespaceOnly); err != nil {
				logx.WithFields(logx.Fields{
					"gamespace": event.Gamespace,
					"accounts":  len(event.Accounts),
				}).WithError(err).Error("failed to process account deletion event")
			}
		}
	}
}
