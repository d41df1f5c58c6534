package pubip

import "context"

// DefaultAuthority is the external service queried by the package-level
// helpers.
const DefaultAuthority = "https://icanhazip.com/"

// IP returns the public IP address of the current machine by querying an
// external authority service.
func IP() (string, error) {
	return IPWithContext(context.Background())
}

// IPWithContext is IP with a caller-supplied context for cancellation.
func IPWithContext(ctx context.Context) (string, error) {
	return NewAuthority(DefaultAuthority).IP(ctx)
}
