package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kydenul/lotofacil"
)

const (
	defaultGameSize = 15
	defaultCount    = 10
)

// filterFlags are the range filters shared by the generation commands
type filterFlags struct {
	evenMin, evenMax     int
	sumMin, sumMax       int
	lowMin, lowMax       int
	repeatMin, repeatMax int
	repeatRef            string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	flags := cmd.Flags()
	flags.IntVar(&f.evenMin, "even-min", 0, "minimum even numbers per game")
	flags.IntVar(&f.evenMax, "even-max", 0, "maximum even numbers per game")
	flags.IntVar(&f.sumMin, "sum-min", 0, "minimum sum per game")
	flags.IntVar(&f.sumMax, "sum-max", 0, "maximum sum per game")
	flags.IntVar(&f.lowMin, "low-min", 0, "minimum numbers in 1..13 per game")
	flags.IntVar(&f.lowMax, "low-max", 0, "maximum numbers in 1..13 per game")
	flags.IntVar(&f.repeatMin, "repeat-min", 0, "minimum numbers shared with --repeat-ref")
	flags.IntVar(&f.repeatMax, "repeat-max", 0, "maximum numbers shared with --repeat-ref")
	flags.StringVar(&f.repeatRef, "repeat-ref", "", "reference draw for the repetition filter, e.g. 1,2,3,...")
}

// build returns nil when no filter flag was given
func (f *filterFlags) build(cmd *cobra.Command) (*lotofacil.FilterSet, error) {
	flags := cmd.Flags()
	rangeOf := func(minName string, lo int, maxName string, hi int) *lotofacil.RangeConstraint {
		var rc lotofacil.RangeConstraint
		if flags.Changed(minName) {
			rc.Min = &lo
		}
		if flags.Changed(maxName) {
			rc.Max = &hi
		}
		if rc.IsZero() {
			return nil
		}
		return &rc
	}

	set := &lotofacil.FilterSet{
		Even: rangeOf("even-min", f.evenMin, "even-max", f.evenMax),
		Sum:  rangeOf("sum-min", f.sumMin, "sum-max", f.sumMax),
		Low:  rangeOf("low-min", f.lowMin, "low-max", f.lowMax),
	}
	if repeat := rangeOf("repeat-min", f.repeatMin, "repeat-max", f.repeatMax); repeat != nil {
		ref, err := parseNumbers(f.repeatRef)
		if err != nil {
			return nil, err
		}
		if len(ref) == 0 {
			return nil, fmt.Errorf("--repeat-min/--repeat-max need --repeat-ref")
		}
		set.Repetition = &lotofacil.RepetitionFilter{RangeConstraint: *repeat, Reference: ref}
	}

	if set.Even == nil && set.Sum == nil && set.Low == nil && set.Repetition == nil {
		return nil, nil
	}
	return set, nil
}

func newCombosCmd(a *app) *cobra.Command {
	var (
		size     int
		limit    int
		universe string
		balanced bool
		filters  filterFlags
	)
	cmd := &cobra.Command{
		Use:   "combos",
		Short: "Enumerate combinations in lexicographic order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := parseNumbers(universe)
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateCombinations(cmd.Context(), lotofacil.CombinationRequest{
				Universe: u,
				GameSize: size,
				Limit:    limit,
				Filters:  fs,
				Balanced: balanced,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum games; 0 uses the configured limit")
	cmd.Flags().StringVar(&universe, "universe", "", "numbers to combine (default: 1..25)")
	cmd.Flags().BoolVar(&balanced, "balanced", false, "keep only balanced games")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newBalancedCmd(a *app) *cobra.Command {
	var (
		size, count int
		universe    string
		filters     filterFlags
	)
	cmd := &cobra.Command{
		Use:   "balanced",
		Short: "Generate games balanced by parity, rows and low/high",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := parseNumbers(universe)
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateBalanced(cmd.Context(), lotofacil.BalancedOptions{
				GameSize: size,
				Count:    count,
				Universe: u,
				Filters:  fs,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of games")
	cmd.Flags().StringVar(&universe, "universe", "", "numbers to combine (default: 1..25)")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newFixedCmd(a *app) *cobra.Command {
	var (
		size, count     int
		fixed, floating string
		seed            uint64
		filters         filterFlags
	)
	cmd := &cobra.Command{
		Use:   "fixed",
		Short: "Generate games sharing 5 to 10 fixed numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx, err := parseNumbers(fixed)
			if err != nil {
				return err
			}
			fl, err := parseNumbers(floating)
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			opts := lotofacil.FixedNumbersOptions{
				Fixed:    fx,
				GameSize: size,
				Count:    count,
				Floating: fl,
				Filters:  fs,
			}
			if cmd.Flags().Changed("seed") {
				opts.Random = lotofacil.NewSeededSource(seed)
			}
			result, err := a.engine.GenerateFixedNumbers(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of games")
	cmd.Flags().StringVar(&fixed, "fixed", "", "fixed numbers, e.g. 1,2,3,4,5")
	cmd.Flags().StringVar(&floating, "floating", "", "floating pool (default: every other number)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible run")
	_ = cmd.MarkFlagRequired("fixed")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newClosureCmd(a *app) *cobra.Command {
	var (
		size, guarantee, maxGames int
		fixed, floating           string
		filters                   filterFlags
	)
	cmd := &cobra.Command{
		Use:   "closure",
		Short: "Build a guaranteed closure over the floating numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx, err := parseNumbers(fixed)
			if err != nil {
				return err
			}
			fl, err := parseNumbers(floating)
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateGuaranteedClosure(cmd.Context(), lotofacil.ClosureOptions{
				Fixed:     fx,
				Floating:  fl,
				GameSize:  size,
				Guarantee: lotofacil.GuaranteeLevel(guarantee),
				MaxGames:  maxGames,
				Filters:   fs,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&guarantee, "guarantee", 14, "guaranteed hits (11-14)")
	cmd.Flags().IntVar(&maxGames, "max-games", 0, "cap on the number of games; 0 means none")
	cmd.Flags().StringVar(&fixed, "fixed", "", "numbers present in every game")
	cmd.Flags().StringVar(&floating, "floating", "", "numbers the closure is built over")
	_ = cmd.MarkFlagRequired("floating")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newSpreadCmd(a *app) *cobra.Command {
	var (
		size, count, guarantee int
		base                   string
		filters                filterFlags
	)
	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Pick balanced games that spread number pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := parseNumbers(base)
			if err != nil {
				return err
			}
			if len(b) == 0 {
				b = lotofacil.AllNumbers()
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateSmartSpread(cmd.Context(), lotofacil.SmartSpreadOptions{
				Base:      b,
				GameSize:  size,
				Count:     count,
				Guarantee: lotofacil.GuaranteeLevel(guarantee),
				Filters:   fs,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of games")
	cmd.Flags().IntVar(&guarantee, "guarantee", 0, "optional guarantee hint (11-14)")
	cmd.Flags().StringVar(&base, "base", "", "numbers to pick from (default: 1..25)")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newFrequencyCmd(a *app) *cobra.Command {
	var (
		size, count int
		ratio       float64
		filters     filterFlags
	)
	cmd := &cobra.Command{
		Use:   "frequency",
		Short: "Mix the most frequent and the most overdue numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateFrequencyDelay(cmd.Context(), lotofacil.FrequencyDelayOptions{
				History:       history,
				GameSize:      size,
				Count:         count,
				FrequentRatio: ratio,
				Filters:       fs,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of games")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "share taken from the frequency ranking; 0 uses the configured ratio")
	addFilterFlags(cmd, &filters)
	return cmd
}

func newCycleClosureCmd(a *app) *cobra.Command {
	var (
		size, count int
		filters     filterFlags
	)
	cmd := &cobra.Command{
		Use:   "cycle-closure",
		Short: "Generate games aimed at closing the current cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			fs, err := filters.build(cmd)
			if err != nil {
				return err
			}
			result, err := a.engine.GenerateCycleClosure(cmd.Context(), lotofacil.CycleClosureOptions{
				History:  history,
				GameSize: size,
				Count:    count,
				Filters:  fs,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultGameSize, "numbers per game (15-20)")
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of games")
	addFilterFlags(cmd, &filters)
	return cmd
}
