package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const (
	sessionKeyringService = "accountpro-cli"
	sessionSecretKey      = "session-secret"
	sessionUserKey        = "session-user"
)

var errNotLoggedIn = errors.New("not logged in; run 'accountpro login' first")

func saveSession(secret, userID string) error {
	if err := keyring.Set(sessionKeyringService, sessionSecretKey, secret); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := keyring.Set(sessionKeyringService, sessionUserKey, userID); err != nil {
		return fmt.Errorf("save session user: %w", err)
	}
	return nil
}

func loadSession() (secret, userID string, err error) {
	secret, err = keyring.Get(sessionKeyringService, sessionSecretKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", "", errNotLoggedIn
	}
	if err != nil {
		return "", "", fmt.Errorf("read session: %w", err)
	}
	userID, _ = keyring.Get(sessionKeyringService, sessionUserKey)
	return secret, userID, nil
}

func clearSession() {
	_ = keyring.Delete(sessionKeyringService, sessionSecretKey)
	_ = keyring.Delete(sessionKeyringService, sessionUserKey)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Account Pro",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in account",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if email == "" {
		var err error
		email, err = pterm.DefaultInteractiveTextInput.Show("Email")
		if err != nil {
			return err
		}
	}
	if password == "" {
		var err error
		password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	sess, err := newStoreClient().CreateEmailPasswordSession(cmd.Context(), email, password)
	if err != nil {
		pterm.Error.Println("Login failed.")
		return err
	}
	if err := saveSession(sess.Secret, sess.UserID); err != nil {
		return err
	}

	pterm.Success.Printf("Logged in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := newSessionClient()
	if err == nil {
		// Best effort: the local session is forgotten even when the backend
		// cannot be reached.
		if err := client.DeleteSession(cmd.Context(), "current"); err != nil {
			pterm.Warning.Printf("Could not invalidate the remote session: %v\n", err)
		}
	}
	clearSession()
	pterm.Success.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := newSessionClient()
	if err != nil {
		return err
	}

	user, err := client.GetAccount(cmd.Context())
	if err != nil {
		return err
	}

	rows := pterm.TableData{{"Property", "Value"}}
	rows = append(rows, []string{"ID", user.ID})
	rows = append(rows, []string{"Name", user.Name})
	rows = append(rows, []string{"Email", user.Email})
	rows = append(rows, []string{"Registered", user.Registration})
	PrintTableNoPad(rows, true)

	if token := strings.TrimSpace(os.Getenv("ACCOUNTPRO_JWT")); token != "" {
		printJWTExpiry(token)
	}
	return nil
}

// printJWTExpiry shows when the JWT from the environment stops working. The
// claims are read without verification; the backend is the verifier.
func printJWTExpiry(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		pterm.Warning.Printf("ACCOUNTPRO_JWT is not a parseable JWT: %v\n", err)
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if time.Now().After(exp.Time) {
		pterm.Warning.Printf("ACCOUNTPRO_JWT expired at %s\n", exp.Format(time.RFC3339))
		return
	}
	pterm.Info.Printf("ACCOUNTPRO_JWT valid until %s\n", exp.Format(time.RFC3339))
}
