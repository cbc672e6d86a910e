package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"

	"github.com/opensourcejay/cameo-go/internal/history"
)

var assumeYesFlag bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the generation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated media, newest first",
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Skip the confirmation prompt")
	historyCmd.AddCommand(historyListCmd, historyDeleteCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	records := a.history.List()
	if len(records) == 0 {
		fmt.Println("No media generated yet")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%d  %-5s  %s  %s\n", r.ID, r.Kind, r.CreatedAt.Format("2006-01-02 15:04"), truncate(r.Prompt, 60))
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.history.Remove(id, confirmer()); err != nil {
		if errors.Is(err, history.ErrNotConfirmed) {
			fmt.Println("Cancelled")
			return nil
		}
		return err
	}
	fmt.Println("Deleted")
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.history.Clear(confirmer()); err != nil {
		if errors.Is(err, history.ErrNotConfirmed) {
			fmt.Println("Cancelled")
			return nil
		}
		return err
	}
	fmt.Println("History cleared")
	return nil
}

// confirmer builds the confirmation capability the history store requires:
// a native dialog when one is available, a terminal prompt otherwise, and a
// pass-through under --yes.
func confirmer() history.Confirmer {
	if assumeYesFlag {
		return history.ConfirmerFunc(func(string) bool { return true })
	}
	return history.ConfirmerFunc(func(prompt string) bool {
		err := zenity.Question(prompt, zenity.Title("CAMEO"), zenity.Icon(zenity.WarningIcon))
		switch {
		case err == nil:
			return true
		case errors.Is(err, zenity.ErrCanceled):
			return false
		}
		// No display available; fall back to the terminal.
		fmt.Printf("%s [y/N] ", prompt)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
