package events

import (
	"context"

	"github.com/bookstore/library/internal/db"
)

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBookCreated(context.Context, *db.Book) error { return nil }

func (NopPublisher) PublishBookUpdated(context.Context, *db.Book) error { return nil }

func (NopPublisher) PublishBookDeleted(context.Context, int64) error { return nil }

func (NopPublisher) IsHealthy() bool { return true }

func (NopPublisher) Close() error { return nil }
