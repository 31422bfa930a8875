package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alxlyan/alexchess/config"
	"github.com/alxlyan/alexchess/search"
	"github.com/alxlyan/alexchess/uci"
)

var (
	GitVersion string
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// lineEditor ends the session on ctrl-c like it does on ctrl-d.
type lineEditor struct {
	*readline.Instance
}

func (l lineEditor) Readline() (string, error) {
	line, err := l.Instance.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func setupLogging(cfg *config.Config) {
	// stdout belongs to the protocol.
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
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg)
	log.Info().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.SanitizedSettings())

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var lines uci.LineReader
	if cfg.GetBool("interactive") {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:              "\033[31malexchess>\033[0m ",
			HistoryFile:         "/tmp/alexchess_history.tmp",
			EOFPrompt:           "quit",
			InterruptPrompt:     "^C",
			HistorySearchFold:   true,
			FuncFilterInputRune: filterInput,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not start line editor")
		}
		defer rl.Close()
		lines = lineEditor{rl}
	} else {
		lines = uci.NewScannerReader(os.Stdin)
	}

	proto := uci.New(cfg, search.NewSolver(cfg), os.Stdout)
	if err := proto.Run(ctx, lines); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("protocol-loop-failed")
	}
	log.Info().Msg("engine shutting down")
}
