package cmd

import (
	"fmt"
	"strconv"

	"github.com/lukman83/bazenda-cli/internal/notify"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Manage the price notification inbox",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications stored for this device",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification id]",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all notifications as read",
	RunE:  runNotificationsReadAll,
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete [notification id]",
	Short: "Delete one notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsDelete,
}

var notificationsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through the configured sinks",
	RunE:  runNotificationsTest,
}

func init() {
	notificationsListCmd.Flags().Int("limit", 50, "Max notifications")
	notificationsListCmd.Flags().Int("offset", 0, "Pagination offset")
	notificationsListCmd.Flags().Bool("unread", false, "Only unread notifications")
	notificationsListCmd.Flags().String("format", "table", "Output format: json, table")
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd,
		notificationsReadAllCmd, notificationsDeleteCmd, notificationsTestCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	unread, _ := cmd.Flags().GetBool("unread")
	format, _ := cmd.Flags().GetString("format")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	page, ok := a.gateway.Notifications(cmd.Context(), limit, offset, unread)
	if !ok {
		return fmt.Errorf("could not fetch notifications")
	}
	return printNotifications(page, format)
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification id %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.gateway.MarkAsRead(cmd.Context(), id) {
		return fmt.Errorf("mark as read failed")
	}
	fmt.Printf("Marked #%d as read\n", id)
	return nil
}

func runNotificationsReadAll(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.gateway.MarkAllRead(cmd.Context()) {
		return fmt.Errorf("mark all as read failed")
	}
	fmt.Println("All notifications marked as read")
	return nil
}

func runNotificationsDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification id %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.gateway.DeleteNotification(cmd.Context(), id) {
		return fmt.Errorf("delete failed")
	}
	fmt.Printf("Deleted #%d\n", id)
	return nil
}

func runNotificationsTest(cmd *cobra.Command, args []string) error {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return fmt.Errorf("no push sink configured: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return err
	}
	if err := tg.Test(); err != nil {
		return fmt.Errorf("test notification failed: %w", err)
	}
	fmt.Println("Test notification sent")
	return nil
}
