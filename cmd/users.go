/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bioenroll/gateway/config"
	"github.com/bioenroll/gateway/internal/enrollment"
	"github.com/bioenroll/gateway/internal/facegate"
	"github.com/bioenroll/gateway/internal/roster"
	"github.com/bioenroll/gateway/internal/terminal"
	"github.com/bioenroll/gateway/types"
	"github.com/spf13/cobra"
)

// usersCmd represents the users command.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users on the biometric terminal backend",
}

var usersSearch string

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally filtered by name or employee code",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := roster.New(newTerminalClient())
		if err := r.Reload(cmd.Context()); err != nil {
			return err
		}
		r.SetQuery(usersSearch)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "UID\tUSER ID\tNAME\tROLE\tMETHODS")
		for _, user := range r.Visible() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				user.UID, user.UserID, user.Name, user.Role, methodSummary(user))
		}
		return w.Flush()
	},
}

var (
	addUserID      string
	addName        string
	addRole        string
	addFingerprint bool
	addPassword    string
	addBadge       string
	addFacePath    string
)

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new user on the terminal backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(addRole)
		if err != nil {
			return err
		}

		form := enrollment.RegistrationForm{
			UserID: addUserID,
			Name:   addName,
			Role:   role,
			Methods: types.VerificationMethods{
				Fingerprint: addFingerprint,
				Face:        addFacePath != "",
				Password:    addPassword != "",
				Badge:       addBadge != "",
			},
			Password:        addPassword,
			ConfirmPassword: addPassword,
			BadgeNumber:     addBadge,
		}

		if addFacePath != "" {
			image, err := captureFromFile(addFacePath)
			if err != nil {
				return err
			}
			form.FaceImage = image
		}

		if errs := enrollment.Validate(form); !errs.Valid() {
			for field, message := range errs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, message)
			}
			return fmt.Errorf("registration is not valid")
		}

		result := newTerminalClient().CreateUser(cmd.Context(), form.Request())
		if !result.Success {
			return fmt.Errorf("create failed: %s", resultText(result.Error, result.Message))
		}

		if result.Data != nil {
			fmt.Printf("created user %s (uid %s)\n", result.Data.UserID, result.Data.UID)
		} else {
			fmt.Println("created user")
		}
		if result.NextStep != "" {
			fmt.Printf("next step: %s\n", result.NextStep)
		}
		return nil
	},
}

var (
	updateUID  string
	updateName string
	updateRole string
)

var usersUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit a user's name or role",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := roster.New(newTerminalClient())
		if err := r.Reload(cmd.Context()); err != nil {
			return err
		}

		form, err := r.Edit(updateUID)
		if err != nil {
			return err
		}
		if updateName != "" {
			form.Name = updateName
		}
		if updateRole != "" {
			role, err := parseRole(updateRole)
			if err != nil {
				return err
			}
			form.Role = role
		}

		if err := r.SubmitEdit(cmd.Context(), form); err != nil {
			return err
		}
		fmt.Printf("updated user %s\n", updateUID)
		return nil
	},
}

var (
	deleteUID string
	deleteYes bool
)

var usersDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user from the terminal backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := roster.New(newTerminalClient())
		if err := r.Reload(cmd.Context()); err != nil {
			return err
		}

		user, err := r.Get(deleteUID)
		if err != nil {
			return err
		}

		confirm := func() bool {
			if deleteYes {
				return true
			}
			return promptYesNo(fmt.Sprintf("Delete %s (%s)?", user.Name, user.UserID))
		}

		deleted, err := r.Delete(cmd.Context(), deleteUID, confirm)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("canceled")
			return nil
		}
		fmt.Printf("deleted user %s\n", deleteUID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersUpdateCmd, usersDeleteCmd)

	usersListCmd.Flags().StringVar(&usersSearch, "search", "", "filter by name or employee code")

	usersAddCmd.Flags().StringVar(&addUserID, "user-id", "", "employee code for the new user")
	usersAddCmd.Flags().StringVar(&addName, "name", "", "display name")
	usersAddCmd.Flags().StringVar(&addRole, "role", string(types.RoleNormalUser), "role: NormalUser or SuperAdmin")
	usersAddCmd.Flags().BoolVar(&addFingerprint, "fingerprint", false, "enable fingerprint verification")
	usersAddCmd.Flags().StringVar(&addPassword, "password", "", "device password (enables password verification)")
	usersAddCmd.Flags().StringVar(&addBadge, "badge", "", "badge number (enables badge verification)")
	usersAddCmd.Flags().StringVar(&addFacePath, "face-image", "", "path to a face photo (enables face verification)")

	usersUpdateCmd.Flags().StringVar(&updateUID, "uid", "", "backend uid of the user")
	usersUpdateCmd.Flags().StringVar(&updateName, "name", "", "new display name")
	usersUpdateCmd.Flags().StringVar(&updateRole, "role", "", "new role")
	_ = usersUpdateCmd.MarkFlagRequired("uid")

	usersDeleteCmd.Flags().StringVar(&deleteUID, "uid", "", "backend uid of the user")
	usersDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
	_ = usersDeleteCmd.MarkFlagRequired("uid")
}

func newTerminalClient() *terminal.Client {
	cfg := config.LoadConfig()
	return terminal.NewClient(
		cfg.Terminal.BaseURL,
		terminal.FileTokenSource{Path: cfg.Terminal.TokenFile},
		cfg.Terminal.Timeout,
	)
}

// captureFromFile runs the photo through the capture gate. A capture
// outside the size bounds can be force-accepted at the prompt, matching
// the retry-or-override choice the mobile flow offers.
func captureFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	session := facegate.NewSession()
	session.Begin()
	if verdict := session.Submit(base64.StdEncoding.EncodeToString(data)); verdict != facegate.VerdictOK {
		fmt.Fprintln(os.Stderr, verdict.Message())
		if !promptYesNo("Accept this capture anyway?") {
			return "", fmt.Errorf("capture rejected, retake the photo and retry")
		}
		session.Override()
	}

	image, ok := session.Confirm()
	if !ok {
		return "", fmt.Errorf("no accepted capture to confirm")
	}
	return image, nil
}

func promptYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func parseRole(raw string) (types.Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(string(types.RoleNormalUser)):
		return types.RoleNormalUser, nil
	case strings.ToLower(string(types.RoleSuperAdmin)):
		return types.RoleSuperAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func resultText(errMsg, message string) string {
	if errMsg != "" {
		return errMsg
	}
	if message != "" {
		return message
	}
	return "unknown error"
}

func methodSummary(user types.BiometricUser) string {
	var parts []string
	if user.HasFingerprint {
		parts = append(parts, "fingerprint")
	}
	if user.HasFace {
		parts = append(parts, "face")
	}
	if user.HasPassword {
		parts = append(parts, "password")
	}
	if user.BadgeNumber != "" {
		parts = append(parts, "badge")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
