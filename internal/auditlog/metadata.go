package auditlog

import "context"

// Metadata is what a command knows about its target. Backend is the API base
// URL used; Subject is the account name or output file the command acted on.
type Metadata struct {
	Backend string
	Subject string
}

type metadataKey struct{}

// WithMetadata attaches audit metadata to a context, keeping any fields the
// new value leaves empty.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		Backend: pick(meta.Backend, existing.Backend),
		Subject: pick(meta.Subject, existing.Subject),
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns audit metadata stored in the context.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
