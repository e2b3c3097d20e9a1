package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bilifetch/pkg/auth"
	"bilifetch/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bilibili credentials",
	Long: `Manage stored Bilibili session cookies securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store Bilibili session cookies securely",
	Long: `Store Bilibili session cookies in the system keychain or an
encrypted file.

You will be prompted for:
  - Account name (if not provided)
  - SESSDATA cookie value
  - bili_jct cookie value
  - buvid3 cookie value (optional)
  - DedeUserID cookie value (optional)

To get these values:
1. Log into bilibili.com in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > https://www.bilibili.com
4. Copy the SESSDATA and bili_jct values`,
	Example: `  # Interactive login
  bilifetch auth login

  # Login with account name
  bilifetch auth login myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Bilibili accounts with masked cookie values.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if name == "" {
		fmt.Print("Account name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read account name", err.Error())
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
	}

	if name == "" {
		ui.PrintError("Account name is required", "")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("SESSDATA cookie value: ")
	sessdata, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read SESSDATA", err.Error())
		os.Exit(1)
	}
	if sessdata == "" {
		ui.PrintError("SESSDATA is required", "")
		os.Exit(1)
	}

	fmt.Print("bili_jct cookie value: ")
	biliJct, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read bili_jct", err.Error())
		os.Exit(1)
	}

	fmt.Print("buvid3 cookie value (optional, press Enter to skip): ")
	buvid3, _ := reader.ReadString('\n')
	buvid3 = strings.TrimSpace(buvid3)

	fmt.Print("DedeUserID cookie value (optional, press Enter to skip): ")
	dedeUserID, _ := reader.ReadString('\n')
	dedeUserID = strings.TrimSpace(dedeUserID)

	account := &auth.Account{
		Name:         name,
		SESSDATA:     sessdata,
		BiliJct:      biliJct,
		Buvid3:       buvid3,
		DedeUserID:   dedeUserID,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))

	fmt.Println("\nYour credentials are stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("  - System keychain (primary)")
	}
	fmt.Println("  - Encrypted file (backup)")

	fmt.Println("\nArchive a user's feed with:")
	fmt.Printf("  $ bilifetch fetch <uid> --account %s\n", name)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintError("No stored accounts found", "")
			return
		}
		if len(accounts) > 1 {
			ui.PrintError("Multiple accounts stored", "Specify which to remove: bilifetch auth logout <name>")
			os.Exit(1)
		}

		name = accounts[0].Name
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Remove account '%s'? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'bilifetch auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Printf("   SESSDATA: %s\n", sanitized.SESSDATA)
		fmt.Printf("   bili_jct: %s\n", sanitized.BiliJct)
		if sanitized.DedeUserID != "" {
			fmt.Printf("   DedeUserID: %s\n", sanitized.DedeUserID)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
