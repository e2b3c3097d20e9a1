package auth

import "github.com/zalando/go-keyring"

// SanitizeAccount returns a copy safe for display, with secrets masked
func SanitizeAccount(account *Account) *Account {
	sanitized := *account
	sanitized.SESSDATA = maskSecret(account.SESSDATA)
	sanitized.BiliJct = maskSecret(account.BiliJct)
	return &sanitized
}

// maskSecret keeps only the leading and trailing characters of a secret
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// IsKeyringAvailable reports whether the system keychain can be used
func IsKeyringAvailable() bool {
	err := keyring.Set(keyringService, "availability_test", "test")
	if err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, "availability_test")
	return true
}
