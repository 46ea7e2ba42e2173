package publish

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Publisher turns an HTML artifact into a publicly retrievable URL. The call
// is atomic from the caller's view: either a URL comes back or nothing is
// considered published. Graph state is never touched.
type Publisher interface {
	Publish(ctx context.Context, objectName string, html []byte) (string, error)
}

// ObjectName builds a unique object key for a guild's interactive graph.
// A UUID rather than a timestamp keeps rapid successive publishes from
// colliding on the same key.
func ObjectName(guildID string) string {
	return fmt.Sprintf("graph_%s_%s.html", guildID, uuid.NewString())
}
