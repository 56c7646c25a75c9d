package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on an
// overrides provider.
var ErrReadBytesNotSupported = errors.New("confloader: overrides provide a map, not bytes")

// overrides is a koanf provider for dotted keys set on the command line.
// Unset values (nil or "") are skipped so they do not mask lower layers.
type overrides map[string]any

// ReadBytes is not supported; koanf uses Read for this provider.
func (o overrides) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the set overrides as a nested map.
func (o overrides) Read() (map[string]any, error) {
	flat := make(map[string]any, len(o))
	for k, v := range o {
		if v == nil || v == "" {
			continue
		}
		flat[k] = v
	}
	return maps.Unflatten(flat, "."), nil
}
