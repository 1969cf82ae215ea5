package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxPandocStderr = 512

// convertDOCX pipes the rendered list through pandoc. The document language
// is set so Word hyphenates and spell-checks in Romanian.
func convertDOCX(ctx context.Context, html string) ([]byte, error) {
	bin, err := exec.LookPath("pandoc")
	if err != nil {
		return nil, fmt.Errorf("%w: pandoc not on PATH", ErrDOCXDependencyMissing)
	}

	cmd := exec.CommandContext(ctx, bin, "--from=html", "--to=docx", "--metadata=lang:ro-RO", "--output=-")
	cmd.Stdin = strings.NewReader(html)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxPandocStderr {
			msg = msg[:maxPandocStderr]
		}
		if msg != "" {
			return nil, fmt.Errorf("pandoc: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pandoc: %w", err)
	}
	return out, nil
}
