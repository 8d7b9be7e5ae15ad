package bootstrap

import (
	"context"
	"fmt"

	"github.com/chmouel/lazyplaylist/internal/log"
)

// Run executes the command line in args and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	defer func() { _ = log.Close() }()

	if err := NewCommand().Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
