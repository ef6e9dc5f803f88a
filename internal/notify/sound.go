package notify

import (
	"context"
	"github.com/pkg/errors"
	"os/exec"
	"strings"
)

// CuePlayer plays a named audio cue.
type CuePlayer interface {
	Play(ctx context.Context, cue string) error
}

// CommandPlayer plays cues by running an external audio command (paplay, afplay, mpg123)
// with the cue file as its only argument.
type CommandPlayer struct {
	command string
	files   map[string]string
}

func NewCommandPlayer(command string, files map[string]string) *CommandPlayer {
	return &CommandPlayer{command: command, files: files}
}

func (p *CommandPlayer) Play(ctx context.Context, cue string) error {
	file, ok := p.files[cue]
	if !ok || file == "" {
		return errors.Errorf("no file configured for cue %q", cue)
	}

	out, err := exec.CommandContext(ctx, p.command, file).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s %s: %s", p.command, file, strings.TrimSpace(string(out)))
	}
	return nil
}
