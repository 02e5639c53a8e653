package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"gander/engine"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// A small mixed suite: openings, middlegames, endgames.
var benchFENs = []string{
	gm.Startpos,
	"r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"4rrk1/pp1n3p/3q2pQ/2p1pb2/2PP4/2P3N1/P2B2PP/4RRK1 b - - 7 19",
	"6k1/5pp1/7p/8/8/1Q6/5PPP/6K1 w - - 0 1",
}

func main() {
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	threadsFlag := flag.Int("threads", 1, "worker threads")
	fenFlag := flag.String("fen", "", "single FEN to search (empty = suite)")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	fens := benchFENs
	if *fenFlag != "" {
		fens = []string{*fenFlag}
	}

	eng := engine.NewEngine()
	if err := eng.SetOption("Threads", fmt.Sprint(*threadsFlag)); err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	for i, fen := range fens {
		if err := eng.SetPosition(fen, nil); err != nil {
			log.Fatalf("position %d: %v", i+1, err)
		}
		eng.StartThinking(engine.Limits{Depth: *depthFlag})
		eng.WaitSearchDone()
	}
	fmt.Printf("bench: %d positions, depth %d, %d threads, %.2fs\n",
		len(fens), *depthFlag, *threadsFlag, time.Since(start).Seconds())
	eng.Quit()
}
