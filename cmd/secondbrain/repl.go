package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/secondbrain/secondbrain/internal/assistant"
	"github.com/secondbrain/secondbrain/internal/memory"
)

const banner = `Second Brain ready. Type "help" for commands, "quit" to exit.`

const helpText = `Commands:
  help                 show this message
  memories             show what I remember about you
  memory search <q>    search stored memories
  clear                clear the screen
  quit / exit          leave

Anything else is treated as conversation. Prefix with /search, /explain,
or /report for web search, structured explanations, or PDF reports.`

func runREPL(ctx context.Context, a *assistant.Assistant, store memory.Store) {
	fmt.Println(banner)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			return
		case "help":
			fmt.Println(helpText)
			continue
		case "clear":
			fmt.Print("\033[2J\033[H")
			continue
		case "memories":
			entries, err := store.Memories(ctx, "", 200)
			if err != nil {
				fmt.Printf("could not read memories: %v\n", err)
				continue
			}
			fmt.Println(memory.Summary(entries))
			continue
		}

		fmt.Println(a.Process(ctx, line))
	}
}
