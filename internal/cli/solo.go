package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/dependencies/random"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/board"
)

func newSoloCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "solo",
		Short: "Play a single game on your own",
		Long: `Play a single game against a random answer. Enter one guess per line.

Scored rows show [X] for a correct letter, (X) for a letter elsewhere in the
word, and a plain letter when it is absent. In hard mode every guess must
reuse the letters already revealed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := cfg.LoadDictionary()
			if err != nil {
				return err
			}
			target, err := dict.RandomAnswer(random.New())
			if err != nil {
				return err
			}
			logger.Debug("solo game started", slog.Bool("hard_mode", hard))

			b := board.New(target, dict, board.Config{
				MaxGuesses: board.DefaultConfig().MaxGuesses,
				HardMode:   hard,
			})
			if !out.JSON() {
				out.PrintMessage(fmt.Sprintf("Guess the %d letter word. You have %d tries.", len(target), b.Remaining()))
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for !b.Finished() && scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				res, err := b.Submit(line)
				if err != nil {
					if errors.Is(err, model.ErrValidation) {
						out.PrintError(err)
						continue
					}
					return err
				}
				if !out.JSON() {
					out.Print(model.Guess{Word: res.Word, Result: res.States})
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			result := SoloResult{Target: b.Target(), Won: b.Won(), Guesses: []response.Guess{}}
			for _, g := range b.Rows() {
				result.Guesses = append(result.Guesses, guessResponse(g))
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Revealed hints must be used in later guesses")

	return cmd
}
