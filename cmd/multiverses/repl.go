// repl.go — interactive multiverse session on top of liner.
//
// Statements accumulate into a pending analysis body. Block openers (if,
// while, for) switch to a continuation prompt until their 'end' arrives.
//
//	:show    print the pending body
//	:run     enter + explore the pending body and print the table
//	:reset   discard the pending body
//	:quit    exit
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	multiverses "github.com/adwasser/multiverses"
)

const (
	promptMain = "mv> "
	promptCont = "... "
	historyFle = ".multiverses_history"
)

func runRepl(cmd *cobra.Command, args []string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFle)
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("multiverses REPL — :run to explore, :quit to exit")

	var body []string
	depth := 0

	for {
		prompt := promptMain
		if depth > 0 {
			prompt = promptCont
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			// Ctrl+C aborts pending continuation; Ctrl+D (io.EOF) exits.
			if err == liner.ErrPromptAborted {
				depth = 0
				continue
			}
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		if depth == 0 && strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return nil
			case ":reset":
				body = nil
				fmt.Println("cleared")
				continue
			case ":show":
				fmt.Println(strings.Join(body, "\n"))
				continue
			case ":run":
				runPending(strings.Join(body, "\n"))
				continue
			default:
				fmt.Println("unknown command", trimmed)
				continue
			}
		}

		body = append(body, input)
		depth += blockDelta(trimmed)
		if depth < 0 {
			depth = 0
		}
	}
}

// blockDelta counts block openers and closers on one line so the prompt can
// signal an open block. It is a heuristic for prompting only; the parser is
// the authority.
func blockDelta(s string) int {
	d := 0
	for _, w := range strings.Fields(s) {
		switch w {
		case "if", "while", "for":
			d++
		case "end":
			d--
		}
	}
	return d
}

func runPending(src string) {
	if strings.TrimSpace(src) == "" {
		fmt.Println("nothing to run")
		return
	}
	rt := multiverses.NewRuntime()
	m, err := rt.ExploreSource(src)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%d universes\n", m.Len())
	m.WriteTable(os.Stdout)
}
