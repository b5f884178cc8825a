package credential

import "context"

// Static serves a fixed secret, for passwords given explicitly on the command line.
type Static string

func (s Static) Resolve(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrCredentialNotFound
	}

	return string(s), nil
}

func (s Static) Invalidate() {}
