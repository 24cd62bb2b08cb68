package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ConfigFlag   string
	PasswordFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bluefin",
		Short: "Blowfish string encryption, stream framing and secret vault tools",
	}
	rootCmd.PersistentFlags().StringVarP(&ConfigFlag, "config", "c", "", "Path to the config directory")
	rootCmd.PersistentFlags().StringVarP(&PasswordFlag, "password", "p", "", "Password for key derivation")

	vaultCmd.AddCommand(vaultInitCmd)
	vaultCmd.AddCommand(vaultPutCmd)
	vaultCmd.AddCommand(vaultGetCmd)
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultDeleteCmd)

	sealCmd.Flags().StringVarP(&KeyFlag, "key", "k", "", "Hex-encoded stream key (1 to 56 bytes)")
	openCmd.Flags().StringVarP(&KeyFlag, "key", "k", "", "Hex-encoded stream key (1 to 56 bytes)")

	rootCmd.AddCommand(selfTestCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(checksumCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(vaultCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}
