package oracle

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCommand = "solana"
	DefaultArg     = "slot"
)

// CommandOracle runs an external command printing the current slot.
// Every call spawns the command again.
type CommandOracle struct {
	path string
	args []string
}

var _ Oracle = (*CommandOracle)(nil)

// NewCommandOracle creates an oracle running path with args.
func NewCommandOracle(path string, args ...string) *CommandOracle {
	return &CommandOracle{
		path: path,
		args: args,
	}
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(cmdline string) (*CommandOracle, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, errors.New("oracle command cannot be empty")
	}
	return NewCommandOracle(fields[0], fields[1:]...), nil
}

func (o *CommandOracle) String() string {
	return strings.Join(append([]string{o.path}, o.args...), " ")
}

func (o *CommandOracle) Progress(ctx context.Context) (float64, error) {
	out, err := exec.CommandContext(ctx, o.path, o.args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			log.WithField("command", o.String()).Debugf("oracle stderr: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, errors.WithDetails(fmt.Errorf("%w: %w", ErrOracleUnavailable, err), "command", o.String())
	}

	slot, err := parseSlot(string(out))
	if err != nil {
		return 0, errors.WithDetails(err, "command", o.String())
	}
	log.WithField("slot", slot).Trace("oracle returned slot")
	return Progress(slot), nil
}

func parseSlot(out string) (float64, error) {
	fields := strings.Fields(out)
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: expected a single value, got %q", ErrOracleParse, out)
	}
	slot, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOracleParse, err)
	}
	return slot, nil
}
