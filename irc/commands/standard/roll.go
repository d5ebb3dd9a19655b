package standard

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"perchbot/irc/commands"
	"perchbot/irc/state"
)

const maxDice = 300

type Roll struct{}

func (Roll) Info() commands.Info {
	return commands.Info{
		Name:    "roll",
		Aliases: []string{"dice"},
		Help:    "Generates random numbers.",
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-seed", Help: "The seed that should be used for the random number generator."},
			{Name: "NdM", Help: "Roll N dice with M sides, 1d6 when omitted.", Values: "1-300"},
		},
		Example: "roll -seed:42 3d255",
	}
}

func (Roll) Run(s *state.State) error {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if seedText, ok := s.ConsumeFlagOK("seed"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(seedText), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", seedText)
		}
		rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}

	count, sides, err := parseDice(s.Message())
	if err != nil {
		return err
	}

	s.Send(strings.Join(rollDice(rng, count, sides), ", "))
	return nil
}

func rollDice(rng *rand.Rand, count, sides int) []string {
	results := make([]string, count)
	for i := range results {
		results[i] = strconv.Itoa(rng.IntN(sides) + 1)
	}
	return results
}

// parseDice reads "NdM", "N" or nothing. Both numbers are clamped to 1..300.
func parseDice(text string) (int, int, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 1, 6, nil
	}

	countText, sidesText, hasSides := strings.Cut(text, "d")
	count, err := strconv.Atoi(countText)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a dice roll, try 3d6", text)
	}
	sides := 6
	if hasSides {
		if sides, err = strconv.Atoi(sidesText); err != nil {
			return 0, 0, fmt.Errorf("%q is not a dice roll, try 3d6", text)
		}
	}
	return clamp(count), clamp(sides), nil
}

func clamp(n int) int {
	return min(maxDice, max(1, n))
}
