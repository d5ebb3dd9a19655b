package admin

import (
	"fmt"
	"strings"

	"perchbot/helpers"
	"perchbot/irc/access"
	"perchbot/irc/commands"
	"perchbot/irc/state"
	"perchbot/queue"
)

// Cancel stops a running long job. Users may cancel their own jobs, operators anyone's.
type Cancel struct {
	runner *queue.Runner
}

func NewCancel(r *queue.Runner) *Cancel {
	return &Cancel{runner: r}
}

func (c *Cancel) Info() commands.Info {
	return commands.Info{
		Name:    "cancel",
		Aliases: []string{"stop"},
		Help:    "Cancels a running long job, or lists them when no kind is given.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "kind", Help: "The module whose job should be cancelled."},
		},
		Example: "cancel title",
	}
}

func (c *Cancel) Run(s *state.State) error {
	kind := strings.ToLower(strings.TrimSpace(s.Message()))
	jobs := c.runner.Active()

	if kind == "" {
		if len(jobs) == 0 {
			s.Send("Nothing is running.")
			return nil
		}
		var parts []string
		for _, j := range jobs {
			parts = append(parts, fmt.Sprintf("[b]%s[/b] for %s (%s)", j.Kind, j.Owner, helpers.Since(j.Started)))
		}
		s.Send("Running: " + strings.Join(parts, ", "))
		return nil
	}

	for _, j := range jobs {
		if j.Kind != kind {
			continue
		}
		if !strings.EqualFold(j.Owner, s.User()) && !access.Satisfies(access.Operator, s.Level()) {
			return fmt.Errorf("only %s or an OPERATOR can cancel this %s job", j.Owner, kind)
		}
		if c.runner.Cancel(kind) {
			s.Logger().Info("Job cancelled", "kind", kind, "owner", j.Owner)
			s.SendSuccess("Cancelled the " + kind + " job.")
			return nil
		}
	}
	s.Send("There is no " + kind + " job running.")
	return nil
}
