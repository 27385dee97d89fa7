package notify

import (
	"context"
	"strconv"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

// OwnerLookup resolves the user that owns a document.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, cvID int64) (int64, error)
}

// Notifier announces processed CVs to the embedding service.
type Notifier struct {
	publisher Publisher
	owners    OwnerLookup
	topic     string
}

func NewNotifier(p Publisher, owners OwnerLookup, topic string) *Notifier {
	return &Notifier{publisher: p, owners: owners, topic: topic}
}

// NotifyEmbedding publishes {"id": cvID, "userId": owner}. Every failure, the
// owner lookup included, is reported as common.ErrNotification.
func (n *Notifier) NotifyEmbedding(ctx context.Context, cvID int64) error {
	owner, err := n.owners.OwnerOf(ctx, cvID)
	if err != nil {
		return common.Wrapf(common.ErrNotification, err, "look up owner of cv %d", cvID)
	}
	ev := entity.EmbeddingRequested{ID: cvID, UserID: owner}
	if err := n.publisher.Publish(ctx, n.topic, strconv.FormatInt(cvID, 10), ev); err != nil {
		return common.Wrapf(common.ErrNotification, err, "publish embedding request for cv %d", cvID)
	}
	return nil
}
