package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// resendKeyPrefix keys the last OTP resend per email in the local store, so
// the cooldown holds across invocations
const resendKeyPrefix = "otp_resend:"

func (a *App) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := a.prompt("Password")
				if err != nil {
					return err
				}
				password = p
			}

			res := a.store.Login(ctx, email, password)
			if err := a.result(res); err != nil {
				return err
			}
			a.toasts.Success(fmt.Sprintf("Welcome back, %s!", res.User.Name))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if !a.store.IsAuthenticated() {
				a.toasts.Info("You are not signed in.")
				return nil
			}
			a.store.Logout(ctx)
			a.toasts.Success("Signed out.")
			return nil
		}),
	}
}

func (a *App) registerCmd() *cobra.Command {
	var req models.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a tenant or landlord account",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.Role = models.Role(strings.ToLower(role))
			if req.Password == "" {
				p, err := a.prompt("Password")
				if err != nil {
					return err
				}
				req.Password = p
			}

			if err := a.result(a.store.Register(ctx, req)); err != nil {
				return err
			}
			a.printf("Next: homerent verify-otp --email %s --otp <code>\n", req.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "mobile number")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleTenant), "tenant or landlord")
	return cmd
}

func (a *App) verifyOTPCmd() *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Confirm your email with the code sent at registration",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			res := a.store.VerifyEmailOTP(ctx, email, otp)
			if err := a.result(res); err != nil {
				return err
			}
			if !a.store.IsAuthenticated() {
				a.printf("You can now sign in: homerent login --email %s\n", email)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&otp, "otp", "", "6-digit code")
	return cmd
}

func (a *App) resendOTPCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend-otp",
		Short: "Send a new verification code",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			key := resendKeyPrefix + strings.ToLower(strings.TrimSpace(email))

			if raw, ok, err := a.local.Get(ctx, key); err == nil && ok {
				if last, err := time.Parse(time.RFC3339Nano, raw); err == nil {
					if wait := a.cfg.Auth.OTPResendCooldown - time.Since(last); wait > 0 {
						secs := int((wait + time.Second - 1) / time.Second)
						return fmt.Errorf("please wait %d seconds before requesting another code", secs)
					}
				}
			}

			if err := a.result(a.store.ResendOTP(ctx, email)); err != nil {
				return err
			}
			if err := a.local.Set(ctx, key, time.Now().Format(time.RFC3339Nano)); err != nil {
				a.logger.WithError(err).Warn("Failed to record OTP resend")
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return a.result(a.store.ForgotPassword(ctx, email))
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) resetPasswordCmd() *cobra.Command {
	var req models.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with the emailed code",
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				p, err := a.prompt("New password")
				if err != nil {
					return err
				}
				req.Password = p
			}
			return a.result(a.store.ResetPassword(ctx, req))
		}),
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&req.OTP, "otp", "", "6-digit code")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "new password (prompted when empty)")
	return cmd
}

func (a *App) whoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in account",
		PreRunE: a.require(anyUser),
		RunE: a.action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if refresh {
				if res := a.store.FetchMe(ctx); !res.Success {
					if !a.store.IsAuthenticated() {
						return ErrSessionExpired
					}
					return fmt.Errorf("%s", res.Message)
				}
			}

			u := a.user()
			a.printf("%s <%s>\n", u.Name, u.Email)
			a.printf("Role:     %s\n", u.Role)
			if u.Role == models.RoleLandlord {
				a.printf("Verified: %t\n", u.Verified())
				payout := "not linked"
				if u.HasPayoutAccount() {
					payout = u.PayoutStatus
					if payout == "" {
						payout = "linked"
					}
				}
				a.printf("Payout:   %s\n", payout)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the account from the server")
	return cmd
}
