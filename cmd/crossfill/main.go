package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/crossfill/config"
	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/lexicon"
	"github.com/domino14/crossfill/render"
	"github.com/domino14/crossfill/shell"
	"github.com/domino14/crossfill/solver"
)

var (
	GitVersion string
)

//go:embed banner.txt
var banner string

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	log.Debug().Msgf("loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString("cpu-profile") != "" {
		f, err := os.Create(cfg.GetString("cpu-profile"))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	args := cfg.Args()
	if len(args) == 0 {
		fmt.Println(banner)
		fmt.Println(GitVersion)
		sc := shell.NewShellController(cfg)
		sc.Loop()
		return
	}
	if len(args) != 2 && len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: crossfill [flags] <structure> <words> [output.png]")
		os.Exit(2)
	}
	if err := solveOnce(cfg, args); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func solveOnce(cfg *config.Config, args []string) error {
	var g *grid.Grid
	var lex *lexicon.Lexicon
	eg := errgroup.Group{}
	eg.Go(func() error {
		var err error
		g, err = grid.Load(args[0])
		return err
	})
	eg.Go(func() error {
		var err error
		lex, err = lexicon.Load(args[1])
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	s := solver.New(g, lex)
	s.SetInference(cfg.GetBool("infer"))
	s.SetNodeBudget(cfg.GetInt("node-budget"))
	asg, err := s.Solve(context.Background())
	if errors.Is(err, solver.ErrUnsatisfiable) {
		fmt.Println("No solution.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Print(render.Text(g, asg))
	if len(args) == 3 {
		return render.SavePNG(g, asg, args[2])
	}
	return nil
}
