package service_interfaces

import "context"

type AccountService interface {
	Register(ctx context.Context, chatID int64, username string) error
	ReportBalance(ctx context.Context, chatID int64) error
	ShowHistory(ctx context.Context, chatID int64) error
}
