package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/scoring"
)

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Word list commands",
	}

	cmd.AddCommand(newWordsCheckCmd())

	return cmd
}

func newWordsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <word>",
		Short: "Check whether a word is accepted as a guess",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := cfg.LoadDictionary()
			if err != nil {
				return err
			}

			word := model.NormalizeWord(args[0])
			out.Print(response.Word{
				Word:   word,
				Valid:  dict.IsValidWord(word),
				Answer: dict.IsAnswer(word),
			})
			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <guess> <target>",
		Short: "Score a guess against a target word",
		Long: `Score a guess against a target word the way a round does.

Each letter is correct (right place), present (elsewhere in the target) or
absent. Repeated letters are only marked as often as the target has them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guess, target := model.NormalizeWord(args[0]), model.NormalizeWord(args[1])

			states, err := scoring.Evaluate(guess, target)
			if err != nil {
				return err
			}

			out.Print(response.Evaluation{
				Guess:  guess,
				Target: target,
				Result: response.States(states),
				Solved: scoring.Solved(states),
			})
			return nil
		},
	}
}
