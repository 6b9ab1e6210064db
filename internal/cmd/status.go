package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/optionsmailer/optionsmailer/internal/config"
	"github.com/optionsmailer/optionsmailer/internal/cooldown"
	errwrap "github.com/optionsmailer/optionsmailer/internal/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cooldown state",
	Long: `Show the persisted cooldown marker: when the last report went out and
how long until the next send is allowed. Deleting the marker file resets
the cooldown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration load failed")
		}

		printCooldownStatus(cooldown.NewStore(cfg.DataDir), cfg, time.Now())
		return nil
	},
}

func printCooldownStatus(store *cooldown.Store, cfg *config.Config, now time.Time) {
	fmt.Printf("Cooldown window: %s\n", cfg.Cooldown.Window)
	fmt.Printf("Marker file:     %s\n", store.Path())

	last, ok := store.LastSent()
	if !ok {
		fmt.Println("Last sent:       never")
		fmt.Println("Send allowed:    yes")
		return
	}
	fmt.Printf("Last sent:       %s\n", last.UTC().Format(time.RFC3339))

	allowed, remaining := store.IsAllowed(now, cfg.Cooldown.Window)
	if allowed {
		fmt.Println("Send allowed:    yes")
	} else {
		fmt.Printf("Send allowed:    no (%s remaining)\n", remaining.Round(time.Second))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
