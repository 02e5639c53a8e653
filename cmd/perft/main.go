package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/sync/errgroup"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// Standard perft suite: FEN plus expected node counts per depth.
var suite = []struct {
	name   string
	fen    string
	counts []uint64
}{
	{"startpos", gm.Startpos, []uint64{20, 400, 8902, 197281, 4865609}},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []uint64{48, 2039, 97862, 4085603}},
	{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812, 43238, 674624}},
	{"promotion", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", []uint64{24, 496, 9483, 182838}},
}

func main() {
	fen := flag.String("fen", gm.Startpos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	runSuite := flag.Bool("suite", false, "Run the standard verification suite, one position per worker")
	oracle := flag.Bool("oracle", false, "Cross-check node counts against the dragontooth generator")
	flag.Parse()

	if *runSuite {
		if err := verifySuite(*oracle); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("suite ok")
		return
	}

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := gm.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	start := time.Now()
	if *divide {
		var total uint64
		for move, nodes := range gm.PerftDivide(board, *depth) {
			fmt.Printf("%s: %d\n", move.String(), nodes)
			total += nodes
		}
		fmt.Printf("total: %d\n", total)
	} else {
		nodes := gm.Perft(board, *depth)
		elapsed := time.Since(start)
		fmt.Printf("perft(%d) = %d  (%.2fs, %.1f Mnps)\n",
			*depth, nodes, elapsed.Seconds(),
			float64(nodes)/elapsed.Seconds()/1e6)
	}

	if *oracle {
		dtBoard := dragontoothmg.ParseFen(*fen)
		dtNodes := dragontoothmg.Perft(&dtBoard, *depth)
		fmt.Printf("oracle(%d) = %d\n", *depth, dtNodes)
		if uint64(dtNodes) != gm.Perft(board, *depth) {
			fmt.Fprintln(os.Stderr, "MISMATCH between generators")
			os.Exit(1)
		}
	}
}

// verifySuite runs every suite position on its own worker and compares each
// depth against the expected count, optionally double-checking with the
// dragontooth generator.
func verifySuite(oracle bool) error {
	var g errgroup.Group
	for _, tc := range suite {
		tc := tc
		g.Go(func() error {
			board, err := gm.ParseFEN(tc.fen)
			if err != nil {
				return fmt.Errorf("%s: %v", tc.name, err)
			}
			for d, want := range tc.counts {
				got := gm.Perft(board, d+1)
				if got != want {
					return fmt.Errorf("%s: perft(%d) = %d, want %d", tc.name, d+1, got, want)
				}
				if oracle {
					dtBoard := dragontoothmg.ParseFen(tc.fen)
					if dt := dragontoothmg.Perft(&dtBoard, d+1); uint64(dt) != want {
						return fmt.Errorf("%s: oracle perft(%d) = %d, want %d", tc.name, d+1, dt, want)
					}
				}
			}
			fmt.Printf("%s ok\n", tc.name)
			return nil
		})
	}
	return g.Wait()
}
