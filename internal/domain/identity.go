package domain

import "context"

// Identity is an opaque authenticated caller reference (a principal). The
// boundary resolves it before any operation reaches the core; the core never
// interprets its contents, it only compares and stores it.
type Identity string

// Timestamp is nanoseconds since the Unix epoch.
type Timestamp uint64

// Clock supplies the current time to the core. It is injected rather than
// read from the runtime so rate windows, pruning, and summaries are testable.
type Clock interface {
	Now() Timestamp
}

// ControllerOracle reports the platform's canonical controller list. It is
// consulted only when an unrecognized caller claims controller privilege, to
// tolerate controller-set drift outside this process.
type ControllerOracle interface {
	Controllers(ctx context.Context) ([]Identity, error)
}

// BlobStore persists the state snapshot across process replacement. The blob
// is opaque to the store; the key is implied by process identity.
type BlobStore interface {
	Save(ctx context.Context, blob []byte) error
	// Load returns the stored blob, or found=false when no snapshot exists.
	Load(ctx context.Context) (blob []byte, found bool, err error)
}
