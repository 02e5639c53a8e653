package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gander/engine"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func main() {
	uciLoop()
}

func uciLoop() {
	eng := engine.NewEngine()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch tokens[0] {
		case "uci":
			fmt.Println("id name Gander 1.0")
			fmt.Println("id author Goose")
			for _, optLine := range eng.OptionLines() {
				fmt.Println(optLine)
			}
			fmt.Println("uciok")

		case "isready":
			fmt.Println("readyok")

		case "ucinewgame":
			eng.NewGame()

		case "setoption":
			name, value, ok := parseSetOption(tokens[1:])
			if !ok {
				fmt.Println("info string Malformed setoption command")
				continue
			}
			if err := eng.SetOption(name, value); err != nil {
				fmt.Println("info string No such option:", name)
			}

		case "position":
			if err := handlePosition(eng, tokens[1:]); err != nil {
				fmt.Println("info string", err)
			}

		case "go":
			eng.StartThinking(parseGo(tokens[1:]))

		case "stop":
			eng.Stop()

		case "ponderhit":
			eng.PonderHit()

		case "quit":
			eng.Quit()
			return

		default:
			fmt.Println("info string Unknown command:", line)
		}
	}

	// EOF on stdin means the GUI went away; treat it as quit.
	eng.Quit()
}

// parseSetOption handles "name <N...> [value <V...>]". Option names may
// contain spaces; buttons have no value and take the implicit "true".
func parseSetOption(tokens []string) (name, value string, ok bool) {
	if len(tokens) == 0 || tokens[0] != "name" {
		return "", "", false
	}
	i := 1
	var nameParts []string
	for ; i < len(tokens) && tokens[i] != "value"; i++ {
		nameParts = append(nameParts, tokens[i])
	}
	if len(nameParts) == 0 {
		return "", "", false
	}
	value = "true"
	if i < len(tokens) && tokens[i] == "value" {
		value = strings.Join(tokens[i+1:], " ")
	}
	return strings.Join(nameParts, " "), value, true
}

func handlePosition(eng *engine.Engine, tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("Malformed position command")
	}

	fen := ""
	i := 0
	switch tokens[0] {
	case "startpos":
		fen = gm.Startpos
		i = 1
	case "fen":
		i = 1
		var parts []string
		for ; i < len(tokens) && tokens[i] != "moves"; i++ {
			parts = append(parts, tokens[i])
		}
		fen = strings.Join(parts, " ")
		if fen == "" {
			return fmt.Errorf("Invalid fen position")
		}
	default:
		return fmt.Errorf("Invalid position subcommand")
	}

	var moves []string
	if i < len(tokens) && tokens[i] == "moves" {
		moves = tokens[i+1:]
	}
	return eng.SetPosition(fen, moves)
}

func parseGo(tokens []string) engine.Limits {
	var l engine.Limits

	atoi := func(i int) int {
		if i >= len(tokens) {
			fmt.Println("info string Malformed go command option", tokens[i-1])
			return 0
		}
		v, err := strconv.Atoi(tokens[i])
		if err != nil {
			fmt.Println("info string Malformed go command option", tokens[i-1])
			return 0
		}
		return v
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "infinite":
			l.Infinite = true
		case "ponder":
			l.Ponder = true
		case "wtime":
			i++
			l.WTime = atoi(i)
		case "btime":
			i++
			l.BTime = atoi(i)
		case "winc":
			i++
			l.WInc = atoi(i)
		case "binc":
			i++
			l.BInc = atoi(i)
		case "movestogo":
			i++
			l.MovesToGo = atoi(i)
		case "depth":
			i++
			l.Depth = atoi(i)
		case "nodes":
			i++
			l.Nodes = int64(atoi(i))
		case "movetime":
			i++
			l.MoveTime = atoi(i)
		case "searchmoves":
			for i+1 < len(tokens) && !isGoKeyword(tokens[i+1]) {
				i++
				l.SearchMoves = append(l.SearchMoves, tokens[i])
			}
		default:
			fmt.Println("info string Unknown go subcommand", tokens[i])
		}
	}
	return l
}

func isGoKeyword(s string) bool {
	switch s {
	case "infinite", "ponder", "wtime", "btime", "winc", "binc",
		"movestogo", "depth", "nodes", "movetime", "searchmoves":
		return true
	}
	return false
}
