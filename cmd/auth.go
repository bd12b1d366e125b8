package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the credential",
	Long: `Sign in with email and password.

The returned token is stored in the system keyring when available and in
the local database otherwise.

Examples:
  bidmatch login
  bidmatch login --email gc@example.com
  echo "$PASSWORD" | bidmatch login --email gc@example.com --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	loginEmail         string
	loginPasswordStdin bool
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	in := bufio.NewReader(cmd.InOrStdin())

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		if s, err := rt.session.Current(); err == nil && s != nil {
			email = s.Email
		}

		v, err := prompt(in, cmd.OutOrStdout(), "Email", email)
		if err != nil {
			return err
		}

		email = v
	}

	if email == "" {
		return errors.New("email is required")
	}

	password, err := readPassword(in, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	res, err := rt.client.Login(cmd.Context(), email, password)
	if err != nil {
		return errors.New(api.UserMessage(err))
	}

	if err := rt.session.SignIn(res.Token, res.User); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	current, _ := rt.session.Current()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s (%s)\n", res.User.Email, res.User.Role.Label())

	if current != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Token stored in: %s\n", formatTokenStorage(current.TokenStorage))
	}

	return nil
}

func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	if !loginPasswordStdin && term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprint(out, "Password: ")

		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}

	return password, nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if err := rt.client.Logout(cmd.Context()); err != nil && !api.IsAuth(err) {
		rt.logger.Warn("server logout failed", slog.Any("error", err))
	}

	if err := rt.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")

	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	res, err := rt.session.Resolve()
	if err != nil {
		return authError(api.ErrNoCredential)
	}

	s, err := rt.session.Current()
	if err != nil {
		return err
	}

	items := map[string]string{
		"API":          rt.cfg.API.BaseURL,
		"Token":        res.Masked(),
		"Token source": res.Name,
	}

	if s != nil {
		items["Email"] = s.Email
		items["Role"] = s.Role.Label()
		items["Storage"] = formatTokenStorage(s.TokenStorage)
		items["Signed in"] = s.SignedInAt.Local().Format("2006-01-02 15:04")
	}

	printInfoBox(cmd.OutOrStdout(), "bidmatch session", items,
		[]string{"API", "Email", "Role", "Token", "Token source", "Storage", "Signed in"})

	return nil
}
