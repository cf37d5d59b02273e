package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/atarasov/NoteVault/internal/config"
	"github.com/atarasov/NoteVault/internal/logger"
	"github.com/atarasov/NoteVault/internal/store"
	"github.com/atarasov/NoteVault/internal/vault"
	"github.com/atarasov/NoteVault/internal/worker"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive note shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.Resolve(opts)
		if err != nil {
			return err
		}

		log := logger.New()
		if err := log.Init(resolved.LogLevel); err != nil {
			return err
		}
		defer func() { _ = log.Log.Sync() }()

		st, closeStore, err := openStore(resolved)
		if err != nil {
			return err
		}
		if closeStore != nil {
			defer func() { _ = closeStore() }()
		}

		pool := worker.NewPool(0)
		defer pool.Close()

		v, err := vault.New(cmd.Context(), store.New(st), pool, resolved.Iterations, log.Log)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("Enter password: ")
		if !scanner.Scan() {
			return nil
		}
		setPassword(v, scanner.Text())

		repl(cmd.Context(), v, scanner)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// setPassword runs key derivation behind a progress spinner; the derivation
// itself happens on the worker pool.
func setPassword(v *vault.Vault, password string) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Deriving key..."
	s.Start()
	v.SetPassword(password)
	s.Stop()
}

// repl accepts commands to manage notes until exit or EOF.
func repl(ctx context.Context, v *vault.Vault, scanner *bufio.Scanner) {
	for {
		fmt.Print("notevault> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, add, list, get <id>, delete <id>, clear, passwd, exit")
		case "add":
			fmt.Print("Enter note text (will be encrypted): ")
			if !scanner.Scan() {
				return
			}
			id, err := v.AddNote(ctx, scanner.Text())
			if err != nil {
				fmt.Println(color.RedString("✗"), "failed to add note:", err)
				continue
			}
			fmt.Println(color.GreenString("✓"), "note stored with id", color.YellowString(id))
		case "list":
			notes := v.Notes()
			if len(notes) == 0 {
				hidden := v.Stored()
				if hidden > 0 {
					fmt.Printf("No notes visible under this password (%d stored)\n", hidden)
				} else {
					fmt.Println("No notes")
				}
				continue
			}
			for _, n := range notes {
				fmt.Printf("%s  %s\n", color.YellowString(n.ID), n.Text)
			}
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			note, ok := v.Note(args[1])
			if !ok {
				fmt.Println("Note not found")
				continue
			}
			fmt.Printf("%s  %s\n", color.YellowString(note.ID), note.Text)
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			deleted, err := v.DeleteNote(ctx, args[1])
			if err != nil {
				fmt.Println(color.RedString("✗"), "failed to delete note:", err)
				continue
			}
			if !deleted {
				fmt.Println("Note not found")
				continue
			}
			fmt.Println(color.GreenString("✓"), "note deleted")
		case "clear":
			if err := v.RemoveAll(ctx); err != nil {
				fmt.Println(color.RedString("✗"), "failed to clear notes:", err)
				continue
			}
			fmt.Println(color.GreenString("✓"), "all notes deleted")
		case "passwd":
			fmt.Print("Enter new password: ")
			if !scanner.Scan() {
				return
			}
			setPassword(v, scanner.Text())
			fmt.Println(color.GreenString("✓"), "password changed; notes under other passwords are hidden, not deleted")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}
