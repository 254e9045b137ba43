package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/synergy-debrief/internal/game"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundtwo"
	"github.com/gokatarajesh/synergy-debrief/internal/simulate"
)

var simOpts struct {
	contentPath  string
	seed         uint64
	botSeed      uint64
	roundSeconds int
	thinkTicks   int
	followUpBias float64
	extraCount   int
	trace        bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a full game with a seeded bot",
	Long: `Plays Round One and the debrief against a manual clock and prints the final metrics.
The same --seed and --bot-seed always produce the same game.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simOpts.contentPath, "content", "content/data.json", "content document to play")
	f.Uint64Var(&simOpts.seed, "seed", 0, "game seed (0 picks one at random)")
	f.Uint64Var(&simOpts.botSeed, "bot-seed", 1, "seed for the bot's choices")
	f.IntVar(&simOpts.roundSeconds, "round-seconds", 1200, "Round One time budget")
	f.IntVar(&simOpts.thinkTicks, "think", 15, "seconds the bot spends before each action")
	f.Float64Var(&simOpts.followUpBias, "follow-up-bias", 0.75, "probability of taking a follow-up over changing topic")
	f.IntVar(&simOpts.extraCount, "extras", 5, "extra debrief questions to draw")
	f.BoolVar(&simOpts.trace, "trace", false, "print every game event")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	store, err := loadStore(cmd.Context(), simOpts.contentPath)
	if err != nil {
		return err
	}

	var notifier game.Notifier
	if simOpts.trace {
		notifier = traceNotifier(cmd.ErrOrStderr())
	}

	think := simOpts.thinkTicks
	if think == 0 {
		think = -1
	}
	res, err := simulate.Run(cmd.Context(), store, notifier, simulate.Options{
		Game: game.Options{
			RoundSeconds:  simOpts.roundSeconds,
			Seed:          simOpts.seed,
			ScoringConfig: roundtwo.ScoringConfig{ExtraCount: simOpts.extraCount},
		},
		BotSeed:      simOpts.botSeed,
		ThinkTicks:   think,
		FollowUpBias: simOpts.followUpBias,
	}, newLogger())
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	return render(cmd.OutOrStdout(), res)
}

// traceNotifier prints one line per event, skipping clock ticks.
func traceNotifier(w io.Writer) game.Notifier {
	return game.NotifierFunc(func(e game.Event) {
		if e.Type == game.EventTimerTick {
			return
		}
		line := fmt.Sprintf("[%s %s] %s", e.Snapshot.Timer.Clock, e.Snapshot.Phase, e.Type)
		switch {
		case e.TraitID != "":
			line += " trait=" + e.TraitID
		case e.Grade != nil:
			line += fmt.Sprintf(" question=%s correct=%t", e.QuestionID, e.Grade.Correct)
		case e.Type == game.EventResponseShown && e.Snapshot.Response != nil:
			line += fmt.Sprintf(" %q", e.Snapshot.Response.Text)
		}
		fmt.Fprintln(w, line)
	})
}
