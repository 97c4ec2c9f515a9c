package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os/exec"
	"strings"
)

// maxOutputTail is how much of the command output is kept in errors.
const maxOutputTail = 2048

// ExecGenerator runs an external site generator. The placeholders
// {data_dir}, {output_dir} and {site_url} in its arguments are replaced
// before each run.
type ExecGenerator struct {
	argv []string
}

// NewExecGenerator prepares command, which must name at least the program.
func NewExecGenerator(command []string, dataDir, outputDir, siteURL string) (*ExecGenerator, error) {
	if len(command) == 0 {
		return nil, errors.New("generator command is empty")
	}
	r := strings.NewReplacer("{data_dir}", dataDir, "{output_dir}", outputDir, "{site_url}", siteURL)
	argv := make([]string, len(command))
	for i, arg := range command {
		argv[i] = r.Replace(arg)
	}
	return &ExecGenerator{argv: argv}, nil
}

// Args returns the expanded command line.
func (g *ExecGenerator) Args() []string {
	return g.argv
}

// Generate implements Generator.
func (g *ExecGenerator) Generate(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, g.argv[0], g.argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Debug("running site generator", "argv", g.argv)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("site generator %s failed: %w: %s", g.argv[0], err, tail(out.String()))
	}
	log.Debug("site generator finished", "output", tail(out.String()))
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputTail {
		s = s[len(s)-maxOutputTail:]
	}
	return s
}
