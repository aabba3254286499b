package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [push token]",
	Short: "Register this device for push delivery",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister [push token]",
	Short: "Deactivate push delivery for this device",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnregister,
}

var deviceIDCmd = &cobra.Command{
	Use:   "device-id",
	Short: "Print the stable device identifier",
	RunE:  runDeviceID,
}

func init() {
	rootCmd.AddCommand(registerCmd, unregisterCmd, deviceIDCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.gateway.RegisterDevice(cmd.Context(), args[0]) {
		return fmt.Errorf("device registration failed")
	}
	fmt.Println("Device registered")
	return nil
}

func runUnregister(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.gateway.UnregisterDevice(cmd.Context(), args[0]) {
		return fmt.Errorf("device unregistration failed")
	}
	fmt.Println("Device unregistered")
	return nil
}

func runDeviceID(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.identity.DeviceID()
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
