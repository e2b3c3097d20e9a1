package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bilifetch/pkg/archiver"
	"bilifetch/pkg/auth"
	"bilifetch/pkg/config"
	"bilifetch/pkg/logger"
	"bilifetch/pkg/ui"
)

var (
	// Fetch command flags
	outputDir       string
	concurrent      int
	rateLimit       int
	accountName     string
	downloadTimeout int
	noMedia         bool
	fromSnapshot    bool
	skipReposts     bool
	skipTextOnly    bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <uid>",
	Short: "Archive a user's dynamics feed",
	Long: `Archive the complete dynamics history of a Bilibili user.

Each post gets its own directory named by publish time and post id,
holding the post text, a metadata record and any attached images. The
full normalized feed is also saved as result.json so a later run can
re-download media without crawling again (--from-snapshot).

Credentials are optional for public feeds but strongly recommended:
  - Stored credentials (use 'bilifetch auth login' to store)
  - Environment variables (BILIFETCH_SESSDATA and BILIFETCH_BILI_JCT)
  - Configuration file`,
	Example: `  # Archive a user's dynamics with default settings
  bilifetch fetch 123456

  # Archive to a specific directory with more workers
  bilifetch fetch 123456 --output ./archive --concurrent 20

  # Re-run media downloads from the saved snapshot
  bilifetch fetch 123456 --from-snapshot

  # Include reposts and video covers in media downloads
  bilifetch fetch 123456 --skip-reposts=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(cmd, args, func(a *archiver.Archiver, uid uint64) error {
			return a.ArchiveDynamics(uid)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFetchFlags(fetchCmd)
}

// addFetchFlags registers the archive flags shared by fetch and opus
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for the archive")
	cmd.Flags().IntVar(&concurrent, "concurrent", 50, "number of concurrent media downloads")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "feed API requests per minute")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	cmd.Flags().IntVar(&downloadTimeout, "download-timeout", 30, "download timeout in seconds")
	cmd.Flags().BoolVar(&noMedia, "no-media", false, "skip media downloads entirely")
	cmd.Flags().BoolVar(&fromSnapshot, "from-snapshot", false, "replay the saved result.json instead of crawling")
	cmd.Flags().BoolVar(&skipReposts, "skip-reposts", true, "exclude reposts and video covers from media downloads")
	cmd.Flags().BoolVar(&skipTextOnly, "skip-text-only", true, "exclude posts without pictures from media downloads")
}

// runFetch loads configuration and credentials, then runs the given
// archive operation for the uid argument
func runFetch(cmd *cobra.Command, args []string, archive func(*archiver.Archiver, uint64) error) {
	uid, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		ui.PrintError("Invalid uid", args[0])
		os.Exit(1)
	}

	if logLevel == "error" {
		ui.SetQuietMode(true)
	}
	ui.PrintInfo("Target user", strconv.FormatUint(uid, 10))

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent != 50 {
		flags["concurrent"] = concurrent
	}
	if rateLimit != 60 {
		flags["rate-limit"] = rateLimit
	}
	if downloadTimeout != 30 {
		flags["download-timeout"] = downloadTimeout
	}
	if noMedia {
		flags["no-media"] = true
	}
	if fromSnapshot {
		flags["from-snapshot"] = true
	}
	if cmd.Flags().Changed("skip-reposts") {
		flags["skip-reposts"] = skipReposts
	}
	if cmd.Flags().Changed("skip-text-only") {
		flags["skip-text-only"] = skipTextOnly
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("bilifetch starting")

	resolveCredentials(cfg)

	logger.WithField("uid", uid).Info("Starting archive operation")

	a, err := archiver.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize archiver", err.Error())
		os.Exit(1)
	}

	if err := archive(a, uid); err != nil {
		logger.WithError(err).WithField("uid", uid).Error("Archive failed")
		ui.PrintError("ARCHIVE FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithField("uid", uid).Info("Archive completed successfully")
	ui.PrintSuccess("[ARCHIVE COMPLETED SUCCESSFULLY]")
}

// resolveCredentials fills the session cookies from the credential
// manager unless the configuration already carries them. Public feeds
// work without a session, so missing credentials only warn.
func resolveCredentials(cfg *config.Config) {
	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account

	if accountName != "" {
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'bilifetch auth list' to see stored accounts")
			os.Exit(1)
		}
	} else if cfg.Bilibili.SESSDATA != "" {
		logger.Info("Using credentials from configuration")
		return
	} else {
		account, err = credManager.RetrieveDefault()
		if err != nil {
			logger.Warn("No credentials found, proceeding without a session")
			ui.PrintWarning("No stored credentials; the API may rate limit anonymous requests")
			fmt.Println("\nTo store credentials securely, run:")
			fmt.Println("  bilifetch auth login")
			fmt.Println("\nYou can also set environment variables:")
			fmt.Println("  export BILIFETCH_SESSDATA=your_sessdata")
			fmt.Println("  export BILIFETCH_BILI_JCT=your_bili_jct")
			return
		}
	}

	cfg.Bilibili.SESSDATA = account.SESSDATA
	cfg.Bilibili.BiliJct = account.BiliJct
	if account.Buvid3 != "" {
		cfg.Bilibili.Buvid3 = account.Buvid3
	}
	if account.DedeUserID != "" {
		cfg.Bilibili.DedeUserID = account.DedeUserID
	}
	if account.UserAgent != "" {
		cfg.Bilibili.UserAgent = account.UserAgent
	}
	logger.WithField("account", account.Name).Info("Using stored credentials")
	ui.PrintInfo("Using account", account.Name)
}
