package vm

import (
	"context"

	"github.com/safescript/safescript/bytecode"
	"github.com/safescript/safescript/object"
)

// Run the given code in a new Virtual Machine and return the result.
func Run(ctx context.Context, main *bytecode.Code, options ...Option) (object.Object, error) {
	return New(main, options...).Run(ctx)
}
