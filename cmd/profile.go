package cmd

import (
	"fmt"
	"strings"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Long: `Update profile fields. Only the flags you pass are sent.

Examples:
  bidmatch profile update --phone "512-555-0100"
  bidmatch profile update --company "Acme Roofing" --city Austin --state TX`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

var (
	profileJSON bool
	profileIn   struct {
		name, company, phone, city, state, zip string
	}
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output as JSON")

	f := profileUpdateCmd.Flags()
	f.StringVar(&profileIn.name, "name", "", "Full name")
	f.StringVar(&profileIn.company, "company", "", "Company")
	f.StringVar(&profileIn.phone, "phone", "", "Phone number")
	f.StringVar(&profileIn.city, "city", "", "City")
	f.StringVar(&profileIn.state, "state", "", "Two-letter state code")
	f.StringVar(&profileIn.zip, "zip", "", "ZIP code")
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	p, err := rt.client.GetProfile(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	if profileJSON {
		return printJSON(cmd.OutOrStdout(), p)
	}

	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, c.Name)
	}

	printInfoBox(cmd.OutOrStdout(), "Profile", map[string]string{
		"Name":       p.Name,
		"Email":      p.Email,
		"Role":       p.Role.Label(),
		"Company":    p.Company,
		"Phone":      p.Phone,
		"Location":   strings.TrimSpace(fmt.Sprintf("%s %s %s", p.City, p.State, p.Zip)),
		"Categories": truncateString(strings.Join(cats, ", "), 40),
	}, []string{"Name", "Email", "Role", "Company", "Phone", "Location", "Categories"})

	return nil
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	var (
		in      api.ProfileUpdate
		changed int
	)

	fields := []struct {
		flag  string
		value string
		dst   **string
	}{
		{"name", profileIn.name, &in.Name},
		{"company", profileIn.company, &in.Company},
		{"phone", profileIn.phone, &in.Phone},
		{"city", profileIn.city, &in.City},
		{"state", strings.ToUpper(profileIn.state), &in.State},
		{"zip", profileIn.zip, &in.Zip},
	}

	for _, f := range fields {
		if cmd.Flags().Changed(f.flag) {
			v := strings.TrimSpace(f.value)
			*f.dst = &v
			changed++
		}
	}

	if changed == 0 {
		return fmt.Errorf("nothing to update: pass at least one of --name, --company, --phone, --city, --state, --zip")
	}

	if _, err := rt.client.UpdateProfile(cmd.Context(), in); err != nil {
		return commandError(err)
	}

	rt.notifier.Success("Profile updated")

	return nil
}
