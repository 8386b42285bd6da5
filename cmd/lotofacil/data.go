package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kydenul/lotofacil"
)

func newCycleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Show the state of the current cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			progress, err := lotofacil.AnalyzeCycle(history)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(cmd, progress)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "draws in cycle: %d\n", progress.DrawsInCycle)
			fmt.Fprintf(out, "missing:        %s\n", formatNumbers(progress.Missing))
			fmt.Fprintf(out, "hot:            %s\n", formatNumbers(progress.Hot))
			fmt.Fprintf(out, "recently closed: %s\n", formatNumbers(progress.RecentlyClosed))
			if progress.AverageLength != nil {
				fmt.Fprintf(out, "average length: %.2f\n", *progress.AverageLength)
			}
			if progress.EstimatedRemaining != nil {
				fmt.Fprintf(out, "estimated remaining: %d\n", *progress.EstimatedRemaining)
			}
			if last := progress.LastClosure; last != nil {
				fmt.Fprintf(out, "last closure: contest %d (%s), %d draws\n", last.Contest, last.Date, last.Length)
			}
			return nil
		},
	}
}

func newProbabilityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probability",
		Short: "Show per-number conditional repeat probabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			probs := lotofacil.ConditionalProbabilities(history)
			if a.jsonOutput {
				return a.printJSON(cmd, probs)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "number  after hit  after miss")
			for _, p := range probs {
				fmt.Fprintf(out, "    %02d     %.4f      %.4f\n", int(p.Number), p.AfterHit, p.AfterMiss)
			}
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <results.xlsx>",
		Short: "Import the results spreadsheet into the Redis history snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open spreadsheet: %w", err)
			}
			defer f.Close()

			draws, err := lotofacil.ImportDrawsXLSX(f)
			if err != nil {
				return err
			}
			if err := a.redisStore().SaveHistory(cmd.Context(), draws); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d draws\n", len(draws))
			return nil
		},
	}
}

func newLatestCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Fetch the latest official result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher := lotofacil.NewLatestResultFetcher(a.config.Fetcher, a.config.CircuitBreaker, a.logger)
			fetcher.SetMonitor(a.engine.Monitor())

			result, err := fetcher.FetchLatest(cmd.Context())
			if err != nil {
				return err
			}
			if save {
				added, err := a.redisStore().AppendDraw(cmd.Context(), result.Draw())
				if err != nil {
					return err
				}
				if !added {
					a.logger.Info("Contest %d is already in the stored history", result.Contest)
				}
			}
			if a.jsonOutput {
				return a.printJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Description())
			fmt.Fprintln(out, formatNumbers(result.Numbers))
			for _, p := range result.Prizes {
				fmt.Fprintf(out, "  %-12s %6d winner(s)  %.2f\n", p.Description, p.Winners, p.Amount)
			}
			if result.Accumulated {
				fmt.Fprintln(out, "accumulated")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "append the result to the Redis history snapshot")
	return cmd
}

func newBetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bets",
		Short: "Manage saved bets",
	}
	cmd.AddCommand(newBetsListCmd(a))
	cmd.AddCommand(newBetsSaveCmd(a))
	cmd.AddCommand(newBetsDeleteCmd(a))
	cmd.AddCommand(newBetsCheckCmd(a))
	return cmd
}

func newBetsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved bets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bets, err := a.redisStore().ListBets(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(cmd, bets)
			}
			out := cmd.OutOrStdout()
			for _, b := range bets {
				fmt.Fprintf(out, "%s  %-10s  %s  %d game(s) of %d  %s\n",
					b.ID, b.Kind, b.CreatedAt.Format("2006-01-02 15:04"), len(b.Games), b.GameSize, b.Name)
			}
			return nil
		},
	}
}

func newBetsSaveCmd(a *app) *cobra.Command {
	var (
		name, kind, fixed string
		games             []string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a bet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed := make([]lotofacil.Game, 0, len(games))
			for _, g := range games {
				numbers, err := parseNumbers(g)
				if err != nil {
					return err
				}
				parsed = append(parsed, lotofacil.Game(lotofacil.UniqueSorted(numbers)))
			}
			fx, err := parseNumbers(fixed)
			if err != nil {
				return err
			}

			bet, err := lotofacil.NewBet(lotofacil.BetKind(strings.ToLower(kind)), name, parsed, fx)
			if err != nil {
				return err
			}
			if err := a.redisStore().SaveBet(cmd.Context(), bet); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bet.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "bet name")
	cmd.Flags().StringVar(&kind, "kind", string(lotofacil.BetSimple), "simple, simulation or strategy")
	cmd.Flags().StringVar(&fixed, "fixed", "", "fixed numbers used to build the games")
	cmd.Flags().StringArrayVar(&games, "game", nil, "a game, e.g. 1,2,3,...; repeat for more games")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func newBetsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.redisStore().DeleteBet(cmd.Context(), args[0])
		},
	}
}

func newBetsCheckCmd(a *app) *cobra.Command {
	var drawn string
	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Check a saved bet against a draw (default: the last stored draw)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bet, err := a.redisStore().GetBet(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			numbers, err := parseNumbers(drawn)
			if err != nil {
				return err
			}
			if len(numbers) == 0 {
				history, err := a.loadHistory(cmd.Context())
				if err != nil {
					return err
				}
				if len(history) == 0 {
					return lotofacil.ErrEmptyHistory
				}
				numbers = history[len(history)-1].Numbers
			}

			checks := lotofacil.CheckGames(bet.Games, numbers)
			if a.jsonOutput {
				return a.printJSON(cmd, checks)
			}
			out := cmd.OutOrStdout()
			for i, c := range checks {
				fmt.Fprintf(out, "%4d  %s  %2d hits  %s\n", i+1, formatNumbers(c.Game), c.Hits, c.Tier)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&drawn, "draw", "", "drawn numbers to check against")
	return cmd
}
