package uci

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/notnil/chess"

	"github.com/alxlyan/alexchess/config"
)

var errBadGo = errors.New("malformed go command")

// minMoveTime is the shortest think time granted to a movetime request.
const minMoveTime = 10 * time.Millisecond

// Limits are the parameters of a go command. A time given as zero is still
// a time limit, so the Has fields record which times were present.
type Limits struct {
	Depth     int
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration

	HasMoveTime  bool
	HasWhiteTime bool
	HasBlackTime bool
}

func parseLimits(fields []string) (Limits, error) {
	var l Limits
	for i := 0; i < len(fields); i++ {
		name := fields[i]
		var dst *time.Duration
		switch name {
		case "depth":
		case "movetime":
			dst = &l.MoveTime
			l.HasMoveTime = true
		case "wtime":
			dst = &l.WhiteTime
			l.HasWhiteTime = true
		case "btime":
			dst = &l.BlackTime
			l.HasBlackTime = true
		case "winc":
			dst = &l.WhiteInc
		case "binc":
			dst = &l.BlackInc
		case "movestogo", "nodes", "mate":
			// accepted and ignored; they take a value.
			i++
			continue
		default:
			return Limits{}, fmt.Errorf("%w: unsupported parameter %q", errBadGo, name)
		}
		if i+1 >= len(fields) {
			return Limits{}, fmt.Errorf("%w: %s needs a value", errBadGo, name)
		}
		i++
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return Limits{}, fmt.Errorf("%w: %s %q: %v", errBadGo, name, fields[i], err)
		}
		if name == "depth" {
			if v < 1 {
				return Limits{}, fmt.Errorf("%w: depth must be positive", errBadGo)
			}
			l.Depth = v
			continue
		}
		if v < 0 {
			v = 0
		}
		*dst = time.Duration(v) * time.Millisecond
	}
	return l, nil
}

// TimeControl turns a go command's clock parameters into a think time.
type TimeControl struct {
	Overhead         float64
	MinThink         time.Duration
	MaxClockFraction float64
	MovesToGo        int
}

func NewTimeControl(cfg *config.Config) TimeControl {
	tc := TimeControl{
		Overhead:         cfg.GetFloat64("move-overhead"),
		MinThink:         time.Duration(cfg.GetInt("min-think-ms")) * time.Millisecond,
		MaxClockFraction: cfg.GetFloat64("max-clock-fraction"),
		MovesToGo:        cfg.GetInt("moves-to-go"),
	}
	if tc.MovesToGo < 1 {
		tc.MovesToGo = 1
	}
	return tc
}

// ThinkTime is how long the side to move should search. ok is false when
// the limits carry no time for the side to move, in which case the search
// is bounded by depth alone. A movetime wins over clocks and is never less
// than minMoveTime. A clock budget is
//
//	min(max(clock/movesToGo + increment/2, minThink), clock*maxClockFraction)
//
// and either budget is finally scaled by the overhead factor. An empty
// clock gives a zero budget: the search answers at once.
func (tc TimeControl) ThinkTime(l Limits, turn chess.Color) (think time.Duration, ok bool) {
	if l.HasMoveTime {
		return scale(max(l.MoveTime, minMoveTime), tc.Overhead), true
	}
	clock, inc, has := l.WhiteTime, l.WhiteInc, l.HasWhiteTime
	if turn == chess.Black {
		clock, inc, has = l.BlackTime, l.BlackInc, l.HasBlackTime
	}
	if !has {
		return 0, false
	}
	t := clock/time.Duration(tc.MovesToGo) + inc/2
	t = max(t, tc.MinThink)
	t = min(t, scale(clock, tc.MaxClockFraction))
	return scale(max(t, 0), tc.Overhead), true
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
