package defs

import (
	"context"
)

type Observer interface {
	OnEvent(target Target, excludeUniqueID uint64, event *Event)
}

// MDI distributes events between engine instances.
type MDI interface {
	SetObserver(ob Observer)

	Load(ctx context.Context) error

	AddTrack(ctx context.Context, target Target) error
	RemoveTrack(ctx context.Context, target Target)

	SendEvent(target Target, excludeUniqueID uint64, event *Event)
}
