package service_interfaces

import "context"

// Flow is one end-to-end conversational money flow (deposit, withdrawal,
// transfer). A flow owns the whole multi-turn interaction for its chat until
// it resolves, fails or times out.
type Flow interface {
	Run(ctx context.Context, chatID int64) error
}
