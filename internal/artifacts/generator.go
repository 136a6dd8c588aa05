package artifacts

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
)

// Generator allocates opaque references for order code artifacts. The
// reference is a path under the public codes directory; rendering the
// actual scannable image is handled by an external collaborator that this
// core never calls.
type Generator struct {
	baseDir string
}

// NewGenerator constructs a Generator rooted at baseDir.
func NewGenerator(baseDir string) *Generator {
	return &Generator{baseDir: baseDir}
}

// GenerateOrderCode returns a fresh reference for the order's code. The
// random component keeps re-issued codes from overwriting earlier ones.
func (g *Generator) GenerateOrderCode(_ context.Context, orderID int64) (string, error) {
	return path.Join(g.baseDir, fmt.Sprintf("order-%d-%s.png", orderID, uuid.NewString())), nil
}
