package automatic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/alxlyan/alexchess/config"
	"github.com/alxlyan/alexchess/stats"
)

// Summary aggregates a series of self-play games.
type Summary struct {
	Games      int
	WhiteWins  int
	BlackWins  int
	Draws      int
	Unfinished int

	Plies   stats.Running
	ThinkMs stats.Running
	Depth   stats.Running
}

func (s *Summary) add(rec GameRecord) {
	s.Games++
	switch rec.Result {
	case "1-0":
		s.WhiteWins++
	case "0-1":
		s.BlackWins++
	case "1/2-1/2":
		s.Draws++
	default:
		s.Unfinished++
	}
	s.Plies.Push(float64(len(rec.Moves)))
	s.ThinkMs.Merge(rec.ThinkMs)
	s.Depth.Merge(rec.Depth)
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	fmt.Fprintf(&sb, "White wins: %d  Black wins: %d  Draws: %d  Unfinished: %d\n",
		s.WhiteWins, s.BlackWins, s.Draws, s.Unfinished)
	if decided := s.WhiteWins + s.BlackWins + s.Draws; decided > 0 {
		score, lo, hi := stats.ScoreInterval(s.WhiteWins, s.Draws, s.BlackWins, 95)
		fmt.Fprintf(&sb, "White score: %.3f (95%% CI %.3f - %.3f)  Elo diff: %.1f\n",
			score, lo, hi, stats.EloDifference(score))
	}
	fmt.Fprintf(&sb, "Plies per game: mean %.1f  stdev %.1f\n", s.Plies.Mean(), s.Plies.Stdev())
	fmt.Fprintf(&sb, "Think time per move (ms): mean %.1f  stdev %.1f  max %.0f\n",
		s.ThinkMs.Mean(), s.ThinkMs.Stdev(), s.ThinkMs.Max())
	fmt.Fprintf(&sb, "Depth per move: mean %.2f\n", s.Depth.Mean())
	return sb.String()
}

// PlayGames plays the configured number of games on the configured number
// of goroutines. Each goroutine has its own runner and so its own search
// cache. Transcripts are written to out one whole game at a time. Games are
// optionally recorded in a sqlite database and every ply in a YAML log.
func PlayGames(ctx context.Context, cfg *config.Config, out io.Writer) (Summary, error) {
	numGames := cfg.GetInt("games")
	threads := max(1, cfg.GetInt("threads"))
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	var store *Store
	if path := cfg.GetString("db"); path != "" {
		var err error
		store, err = OpenStore(ctx, path)
		if err != nil {
			return Summary{}, err
		}
		defer store.Close()
	}

	var logChan chan []byte
	loggerDone := make(chan struct{})
	if path := cfg.GetString("log-file"); path != "" {
		logfile, err := os.Create(path)
		if err != nil {
			return Summary{}, err
		}
		logChan = make(chan []byte, 100)
		go func() {
			defer close(loggerDone)
			defer logfile.Close()
			for msg := range logChan {
				if _, err := logfile.Write(msg); err != nil {
					log.Err(err).Msg("writing ply log")
				}
			}
			log.Debug().Msg("Exiting ply logger goroutine!")
		}()
	} else {
		close(loggerDone)
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 1; i <= numGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
		}
		return nil
	})

	for t := 0; t < threads; t++ {
		g.Go(func() error {
			r := NewGameRunner(logChan, cfg)
			for idx := range jobs {
				var transcript bytes.Buffer
				rec, err := r.PlayGame(gctx, &transcript)
				if rec.ID == uuid.Nil {
					// the game never started.
					return err
				}
				mu.Lock()
				fmt.Fprintf(out, "Game %d (%s)\n", idx, rec.ID)
				out.Write(transcript.Bytes())
				fmt.Fprintln(out)
				summary.add(rec)
				mu.Unlock()
				if store != nil {
					if serr := store.SaveGame(context.WithoutCancel(ctx), rec); serr != nil {
						return serr
					}
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	<-loggerDone
	log.Info().Int("games", summary.Games).Msg("All games finished.")
	return summary, err
}
