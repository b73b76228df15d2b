package ports

import (
	"context"
	"encoding/json"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// ResourceClient issues CRUD calls for catalog resources on behalf of the
// current session. Payloads are opaque JSON.
type ResourceClient interface {
	List(ctx context.Context, res domain.Resource) (json.RawMessage, error)
	Get(ctx context.Context, res domain.Resource, id string) (json.RawMessage, error)
	Create(ctx context.Context, res domain.Resource, body json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, res domain.Resource, id string, body json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, res domain.Resource, id string) error
}
