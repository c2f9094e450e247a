package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riftnotes/riftnotes/internal/api"
	"github.com/riftnotes/riftnotes/internal/coach"
	"github.com/riftnotes/riftnotes/internal/config"
	"github.com/riftnotes/riftnotes/internal/llm"
	"github.com/riftnotes/riftnotes/internal/session"
	"github.com/riftnotes/riftnotes/internal/store"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "riftnotes",
		Short: "Match notes and coaching for League players",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides RIFT_DB)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(notesCmd())
	rootCmd.AddCommand(goalsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath
	if dbPath != "" {
		path = dbPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.New(path)
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.Addr = addr
			}

			log := newLogger()

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			// Without model credentials the server still runs; AI routes
			// answer 503 until they are configured.
			var c *coach.Coach
			client, err := llm.New(cfg.Model)
			if err != nil {
				log.Warn().Err(err).Msg("AI features disabled")
			} else {
				c = coach.New(client)
			}

			sessions := session.New(cfg.CookieName, cfg.Secure)
			server := api.New(s, c, sessions, log, cfg.Addr)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides RIFT_ADDR)")
	return cmd
}

func notesCmd() *cobra.Command {
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List a user's recent notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			s, err := getStore(config.Load())
			if err != nil {
				return err
			}
			defer s.Close()

			notes, err := s.ListNotes(userID, limit, 0)
			if err != nil {
				return err
			}

			if len(notes) == 0 {
				fmt.Println("No notes yet.")
				return nil
			}

			for _, n := range notes {
				fmt.Printf("%s  %s  %s\n", n.ID[:8], n.CreatedAt.Format("2006-01-02"), truncate(n.Text, 60))
				if len(n.Tags) > 0 {
					fmt.Printf("          [%s]\n", strings.Join(n.Tags, ", "))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of notes to show")
	return cmd
}

func goalsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show a user's saved goal plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			s, err := getStore(config.Load())
			if err != nil {
				return err
			}
			defer s.Close()

			plan, err := s.GetGoalPlan(userID)
			if err == store.ErrNotFound {
				fmt.Println("No goal plan saved yet.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Main goal: %s\n", plan.MainGoal.Title)
			if plan.MainGoal.Description != "" {
				fmt.Printf("  %s\n", plan.MainGoal.Description)
			}
			for _, g := range plan.SecondaryGoals {
				fmt.Printf("  - %s\n", g.Title)
			}
			fmt.Printf("Updated: %s\n", plan.UpdatedAt.Format("2006-01-02 15:04"))

			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	return cmd
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	// Cut on rune boundaries so multibyte text stays valid UTF-8.
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
