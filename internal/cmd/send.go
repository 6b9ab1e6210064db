package cmd

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optionsmailer/optionsmailer/internal/dispatch"
	errwrap "github.com/optionsmailer/optionsmailer/internal/errors"
	"github.com/optionsmailer/optionsmailer/internal/loadboard"
	"github.com/optionsmailer/optionsmailer/internal/observability"
	"github.com/optionsmailer/optionsmailer/internal/output"
)

var (
	sendDryRun bool
	sendOutput string
	sendOrgID  string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dispatch the options report once",
	Long: `Dispatch the options report once, through the same cooldown gate the
server uses. A send inside the cooldown window is skipped, not queued.

With --dry-run the load board is queried and the current options are
printed instead of invoking the reporting function or sending email.
Dry runs never consume the cooldown window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration load failed")
		}
		if err := cfg.Validate(); err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration invalid")
		}

		orgID := sendOrgID
		if orgID == "" {
			orgID = cfg.LoadBoard.OrgID
		}

		if sendDryRun {
			return runDryRun(cmd, cfg.LoadBoard.URL, cfg.LoadBoard.APIKey, orgID)
		}

		ctrl, err := buildController(cmd.Context(), cfg)
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "dispatch stack initialization failed")
		}

		res := meteredDispatcher{inner: ctrl, trigger: "cli"}.RequestSend(cmd.Context(), sendOrgID)
		switch res.Outcome {
		case dispatch.OutcomeSent:
			observability.CLILogger.Info("Report sent",
				zap.String("subject", res.Receipt.Subject),
				zap.Int("options", res.Receipt.OptionCount),
				zap.Strings("recipients", res.Receipt.Recipients))
			if res.StorageErr != nil {
				observability.CLILogger.Warn("Email sent but cooldown marker was not persisted",
					zap.Error(res.StorageErr))
			}
			fmt.Printf("Sent: %s (%d options)\n", res.Receipt.Subject, res.Receipt.OptionCount)
			return nil

		case dispatch.OutcomeBlocked:
			fmt.Printf("Skipped: cooldown active, %s remaining\n", res.Remaining.Round(time.Second))
			return nil

		default:
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Dispatch failed", res.Err)
			return res.Err
		}
	},
}

// runDryRun lists the current options without dispatching anything.
func runDryRun(cmd *cobra.Command, baseURL, apiKey, orgID string) error {
	format, err := output.ParseFormat(sendOutput)
	if err != nil {
		return errwrap.NewInvalidInputError(err.Error())
	}

	board := loadboard.NewClient(baseURL, apiKey)
	options, err := board.OptionsWithAvailableLoads(cmd.Context(), orgID)
	if err != nil {
		return errwrap.WrapLookup(cmd.Context(), err, "load board query failed")
	}

	rendered, err := output.NewFormatter(format).FormatOptions(options)
	if err != nil {
		return errwrap.WrapInternal(cmd.Context(), err, "formatting failed")
	}

	fmt.Println(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "list current options instead of sending")
	sendCmd.Flags().StringVarP(&sendOutput, "output", "o", "table", "dry-run output format (table, json, markdown)")
	sendCmd.Flags().StringVar(&sendOrgID, "org", "", "organization id (defaults to configured org)")
}
