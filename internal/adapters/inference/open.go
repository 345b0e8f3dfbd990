package inference

import (
	"context"
	"fmt"

	"github.com/okian/paceline/internal/domain/predictor"
)

// Open builds the model for m's backend.
func Open(ctx context.Context, m *Manifest) (predictor.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch m.Backend {
	case BackendDense:
		d, err := NewDense(m)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendRemote:
		r, err := NewRemote(m.Remote)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, m.Backend)
	}
}
