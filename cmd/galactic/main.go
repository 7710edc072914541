// Package main provides the galactic CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/galactic/cli"
	"github.com/richinex/galactic/server"
	"github.com/richinex/galactic/session"
	"github.com/richinex/galactic/tui"
)

var (
	// Global flags
	configPath  string
	provider    string
	modelName   string
	maxIter     int
	memoryType  string
	personality string
	dbPath      string
	verbose     bool
	offline     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "galactic",
		Short: "A conversational ReAct agent with tools and memory",
		Long: `Galactic is a chat agent that reasons step by step and calls tools
(calculator, web search, Wikipedia, weather, currency, code runner...) before
answering.

Memory strategies:
- buffer:  keep the whole conversation
- window:  keep the last K exchanges
- summary: fold older exchanges into a running summary`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	pf.StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic, deepseek, ollama, langchain)")
	pf.StringVar(&modelName, "model", "", "Model name for the provider")
	pf.IntVarP(&maxIter, "max-iter", "m", 0, "Maximum reasoning iterations per turn (default 7)")
	pf.StringVar(&memoryType, "memory", "", "Memory strategy (buffer, window, summary)")
	pf.StringVar(&personality, "personality", "", "Answer style (Professional, Friendly, Scientific, Casual, Enthusiastic)")
	pf.StringVar(&dbPath, "db", "", "SQLite database for conversation persistence")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show reasoning steps and debug logs")
	pf.BoolVar(&offline, "offline", false, "Run without a language model (demo mode)")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		ConfigPath:  configPath,
		Provider:    provider,
		Model:       modelName,
		MaxIter:     maxIter,
		Memory:      memoryType,
		Personality: personality,
		DBPath:      dbPath,
		Verbose:     verbose,
		Offline:     offline,
	}
}

func chatCmd() *cobra.Command {
	var sessionID string
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat in a full-screen terminal UI.

Use --plain for a line-oriented prompt (works over dumb terminals and pipes).
Use --session with --db to resume a saved conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			opts := options()
			if !plain {
				// Logs would tear the full-screen UI; send them to the log file or nowhere.
				opts.LogOutput = io.Discard
			}
			app, err := cli.Setup(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := cli.NewController(ctx, app, sessionID)
			if err != nil {
				return err
			}
			if plain {
				return cli.REPL(ctx, ctrl, verbose)
			}
			return tui.Run(ctx, ctrl, verbose)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to resume")
	cmd.Flags().BoolVar(&plain, "plain", false, "Use the line-oriented REPL instead of the TUI")

	return cmd
}

func askCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := cli.Setup(ctx, options())
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl, err := cli.NewController(ctx, app, sessionID)
			if err != nil {
				return err
			}
			return cli.Ask(ctx, ctrl, strings.Join(args, " "), cmd.OutOrStdout(), verbose)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := cli.Setup(ctx, options())
			if err != nil {
				return err
			}
			defer app.Close()

			if addr == "" {
				addr = app.Settings.Server.Addr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(session.NewManager(app.Factory), app.Tools, app.Logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("server listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			app.Logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")

	return cmd
}

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			// Listing tools needs no model.
			opts.Offline = true
			opts.LogOutput = io.Discard
			app, err := cli.Setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTools(app.Tools.List()))
			return nil
		},
	}

	return cmd
}

func sessionsCmd() *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.Offline = true
			opts.LogOutput = io.Discard
			app, err := cli.Setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Store == nil {
				return errors.New("no database configured: pass --db or set GALACTIC_DB")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if remove != "" {
				if err := app.Store.Delete(ctx, remove); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted session %s.\n", remove)
				return nil
			}

			ids, err := app.Store.ListSessions(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
				return nil
			}
			for _, id := range ids {
				msgs, err := app.Store.Load(ctx, id)
				if err != nil {
					return err
				}
				preview := ""
				if len(msgs) > 0 {
					preview = cli.Preview(msgs[0].Text, 60)
				}
				fmt.Fprintf(out, "%s  %3d messages  %s\n", id, len(msgs), preview)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remove, "delete", "", "Delete the session with this ID")

	return cmd
}
