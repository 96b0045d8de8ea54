// ABOUTME: Line-oriented orientation source for stdin and sensor pipes.
// ABOUTME: Each non-empty, non-comment line is parsed as one reading.
package motion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ReadLines publishes one reading per line of r until EOF or ctx is done.
// Unparseable lines are reported to onError and skipped.
func ReadLines(ctx context.Context, r io.Reader, feed *Feed, onError func(error)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		o, err := Parse(line)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("line %d: %w", lineNo, err))
			}
			continue
		}
		feed.Publish(ctx, o)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read orientation: %w", err)
	}
	return nil
}
