package history

import (
	"context"

	"github.com/valkey-io/valkey-go"
)

// valkeyGoAdapter adapts a real valkey-go client to the narrow ValkeyClient
// seam ValkeyStore depends on.
type valkeyGoAdapter struct {
	client valkey.Client
}

// NewValkeyGoAdapter wraps an already-connected valkey-go client.
func NewValkeyGoAdapter(client valkey.Client) ValkeyClient {
	return &valkeyGoAdapter{client: client}
}

func (a *valkeyGoAdapter) Do(ctx context.Context, key string) ([]byte, error) {
	resp := a.client.Do(ctx, a.client.B().Get().Key(key).Build())
	if resp.Error() != nil {
		if valkey.IsValkeyNil(resp.Error()) {
			return nil, nil
		}
		return nil, resp.Error()
	}
	bytes, err := resp.AsBytes()
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

func (a *valkeyGoAdapter) Set(ctx context.Context, key string, value []byte) error {
	resp := a.client.Do(ctx, a.client.B().Set().Key(key).Value(string(value)).Build())
	return resp.Error()
}

func (a *valkeyGoAdapter) Del(ctx context.Context, key string) error {
	resp := a.client.Do(ctx, a.client.B().Del().Key(key).Build())
	return resp.Error()
}
