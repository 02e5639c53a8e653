package engine

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// UCI option kinds.
const (
	optSpin = iota
	optCheck
	optButton
	optString
)

// Option is one entry of the UCI option table. Buttons keep no value; spins
// clamp to [Min, Max] on assignment.
type Option struct {
	Name    string
	Type    int
	Min     int
	Max     int
	IntVal  int
	BoolVal bool
	StrVal  string

	defInt  int
	defBool bool
	defStr  string
}

func spinOption(name string, def, min, max int) *Option {
	return &Option{Name: name, Type: optSpin, Min: min, Max: max, IntVal: def, defInt: def}
}

func checkOption(name string, def bool) *Option {
	return &Option{Name: name, Type: optCheck, BoolVal: def, defBool: def}
}

func buttonOption(name string) *Option {
	return &Option{Name: name, Type: optButton}
}

func stringOption(name, def string) *Option {
	return &Option{Name: name, Type: optString, StrVal: def, defStr: def}
}

func defaultThreads() int {
	return Min(runtime.NumCPU(), maxThreads)
}

// newOptionTable lists every recognized option in display order.
func newOptionTable() []*Option {
	return []*Option{
		spinOption("Hash", 32, 4, 4096),
		buttonOption("Clear Hash"),
		checkOption("Ponder", true),
		checkOption("OwnBook", false),
		spinOption("MultiPV", 1, 1, 500),
		spinOption("Threads", defaultThreads(), 1, maxThreads),
		spinOption("Minimum Split Depth", 4, 4, 7),
		spinOption("Maximum Number of Threads per Split Point", 5, 4, 8),
		checkOption("Use Sleeping Threads", true),
		spinOption("Check Extension (PV nodes)", 2, 0, 2),
		spinOption("Check Extension (non-PV nodes)", 1, 0, 2),
		spinOption("Single Evasion Extension (PV nodes)", 2, 0, 2),
		spinOption("Single Evasion Extension (non-PV nodes)", 2, 0, 2),
		spinOption("Mate Threat Extension (PV nodes)", 0, 0, 2),
		spinOption("Mate Threat Extension (non-PV nodes)", 0, 0, 2),
		spinOption("Pawn Push to 7th Extension (PV nodes)", 1, 0, 2),
		spinOption("Pawn Push to 7th Extension (non-PV nodes)", 1, 0, 2),
		spinOption("Passed Pawn Extension (PV nodes)", 1, 0, 2),
		spinOption("Passed Pawn Extension (non-PV nodes)", 0, 0, 2),
		spinOption("Pawn Endgame Extension (PV nodes)", 2, 0, 2),
		spinOption("Pawn Endgame Extension (non-PV nodes)", 2, 0, 2),
		spinOption("Threat Depth", 5, 0, 100),
		checkOption("Futility Pruning (Main Search)", true),
		checkOption("Razoring", true),
		checkOption("UCI_Chess960", false),
		checkOption("Use Search Log", false),
		stringOption("Search Log Filename", "SearchLog.txt"),
	}
}

func (e *Engine) findOption(name string) *Option {
	for _, o := range e.options {
		if strings.EqualFold(o.Name, name) {
			return o
		}
	}
	return nil
}

// SetOption applies a "setoption" command. Buttons take the implicit value
// "true"; unknown names return an error so the front end can print a
// diagnostic instead of crashing.
func (e *Engine) SetOption(name, value string) error {
	o := e.findOption(name)
	if o == nil {
		return fmt.Errorf("no such option %q", name)
	}
	switch o.Type {
	case optButton:
		switch o.Name {
		case "Clear Hash":
			e.tt.clear()
		}
	case optCheck:
		o.BoolVal = strings.EqualFold(value, "true")
	case optSpin:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %q wants a number, got %q", o.Name, value)
		}
		if v < o.Min {
			v = o.Min
		}
		if v > o.Max {
			v = o.Max
		}
		o.IntVal = v
		if o.Name == "Hash" {
			e.tt.setSize(v)
		}
	case optString:
		o.StrVal = value
	}
	return nil
}

// OptionLines renders the table for the "uci" handshake.
func (e *Engine) OptionLines() []string {
	lines := make([]string, 0, len(e.options))
	for _, o := range e.options {
		switch o.Type {
		case optSpin:
			lines = append(lines, fmt.Sprintf("option name %s type spin default %d min %d max %d",
				o.Name, o.defInt, o.Min, o.Max))
		case optCheck:
			lines = append(lines, fmt.Sprintf("option name %s type check default %v", o.Name, o.defBool))
		case optButton:
			lines = append(lines, fmt.Sprintf("option name %s type button", o.Name))
		case optString:
			lines = append(lines, fmt.Sprintf("option name %s type string default %s", o.Name, o.defStr))
		}
	}
	return lines
}

// searchConfig is the immutable snapshot of every tunable the search reads,
// taken when a "go" command arrives so option changes cannot race a running
// search.
type searchConfig struct {
	multiPV            int
	threads            int
	minimumSplitDepth  Depth
	maxThreadsPerSplit int
	useSleepingThreads bool
	ponderEnabled      bool
	ownBook            bool
	chess960           bool

	checkExt         [2]Depth
	singleEvasionExt [2]Depth
	mateThreatExt    [2]Depth
	pawnPushTo7thExt [2]Depth
	passedPawnExt    [2]Depth
	pawnEndgameExt   [2]Depth

	threatDepth Depth
	useFutility bool
	useRazoring bool

	useSearchLog  bool
	searchLogFile string
}

func (e *Engine) snapshotConfig() searchConfig {
	intOpt := func(name string) int { return e.findOption(name).IntVal }
	boolOpt := func(name string) bool { return e.findOption(name).BoolVal }
	extPair := func(base string) [2]Depth {
		return [2]Depth{
			Depth(intOpt(base + " (non-PV nodes)")),
			Depth(intOpt(base + " (PV nodes)")),
		}
	}

	return searchConfig{
		multiPV:            intOpt("MultiPV"),
		threads:            intOpt("Threads"),
		minimumSplitDepth:  Depth(intOpt("Minimum Split Depth")) * onePly,
		maxThreadsPerSplit: intOpt("Maximum Number of Threads per Split Point"),
		useSleepingThreads: boolOpt("Use Sleeping Threads"),
		ponderEnabled:      boolOpt("Ponder"),
		ownBook:            boolOpt("OwnBook"),
		chess960:           boolOpt("UCI_Chess960"),
		checkExt:           extPair("Check Extension"),
		singleEvasionExt:   extPair("Single Evasion Extension"),
		mateThreatExt:      extPair("Mate Threat Extension"),
		pawnPushTo7thExt:   extPair("Pawn Push to 7th Extension"),
		passedPawnExt:      extPair("Passed Pawn Extension"),
		pawnEndgameExt:     extPair("Pawn Endgame Extension"),
		threatDepth:        Depth(intOpt("Threat Depth")) * onePly,
		useFutility:        boolOpt("Futility Pruning (Main Search)"),
		useRazoring:        boolOpt("Razoring"),
		useSearchLog:       boolOpt("Use Search Log"),
		searchLogFile:      e.findOption("Search Log Filename").StrVal,
	}
}
