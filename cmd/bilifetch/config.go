package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bilifetch/pkg/config"
	"bilifetch/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bilifetch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (BILIFETCH_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.bilifetch.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Sensitive values like session cookies are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".bilifetch.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# bilifetch configuration file
#
# All options can also be set with environment variables prefixed
# with BILIFETCH_, for example: BILIFETCH_SESSDATA

# Bilibili session cookies (optional for public feeds)
bilibili:
  # SESSDATA cookie from bilibili.com
  sessdata: ""

  # bili_jct cookie from bilibili.com
  bili_jct: ""

  # buvid3 cookie (optional)
  buvid3: ""

  # DedeUserID cookie (optional)
  dedeuserid: ""

  # User agent string; leave empty to use the default
  user_agent: ""

# Rate limiting for feed API calls
rate_limit:
  requests_per_minute: 60
  burst_size: 10

# Output configuration
output:
  # Root directory for archives
  base_directory: "./dynamic_download"

  # Create a subdirectory per user id
  create_user_folders: true

# Download configuration
download:
  # Number of concurrent media downloads
  concurrent_downloads: 50

  # Fetch media files at all
  media_enabled: true

  # Replay the saved result.json instead of crawling
  from_snapshot: false

  # Exclude reposts and video covers from media downloads
  skip_reposts_and_covers: true

  # Exclude posts without pictures from media downloads
  skip_text_only: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path; leave empty for stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the file and add your session cookies if needed")
	fmt.Println("2. Start archiving with 'bilifetch fetch <uid>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	displayCfg.Bilibili.SESSDATA = maskValue(displayCfg.Bilibili.SESSDATA)
	displayCfg.Bilibili.BiliJct = maskValue(displayCfg.Bilibili.BiliJct)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (BILIFETCH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in standard locations)")
	}
	fmt.Println("4. Default values")
}

// maskValue hides all but the edges of a secret for display
func maskValue(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
