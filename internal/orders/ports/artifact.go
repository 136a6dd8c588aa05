package ports

import "context"

// ArtifactGenerator produces the opaque reference to a scannable code for
// an order. Generation and rendering happen in an external collaborator;
// this core only stores the returned reference, and only alongside a
// status change.
type ArtifactGenerator interface {
	GenerateOrderCode(ctx context.Context, orderID int64) (string, error)
}
