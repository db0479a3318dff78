package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
}
