package main

// Commands for one-shot string encryption and checksum operations, plus the
// framed file sealing built on the stream package.

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkarsten/bluefin"
	"github.com/tkarsten/bluefin/envelope"
	"github.com/tkarsten/bluefin/stream"
)

var KeyFlag string

var selfTestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the embedded Blowfish test vectors",
	Run: func(cmd *cobra.Command, args []string) {
		if !bluefin.SelfTest() {
			fmt.Println("self test FAILED: this build is defective")
			os.Exit(1)
		}
		fmt.Println("self test passed")
	},
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [text]",
	Short: "Encrypt a string under the password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := newEnvelope()
		cipherText, err := env.Encrypt(args[0])
		if err != nil {
			fmt.Println("error encrypting:", err)
			os.Exit(1)
		}
		fmt.Println(cipherText)
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [ciphertext]",
	Short: "Decrypt a string produced by encrypt",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := newEnvelope()
		text, ok := env.Decrypt(args[0])
		if !ok {
			fmt.Println("unable to decrypt: wrong password or malformed ciphertext")
			os.Exit(1)
		}
		fmt.Println(text)
	},
}

var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Print a salted key checksum for the password",
	Run: func(cmd *cobra.Command, args []string) {
		env := newEnvelope()
		fmt.Println(env.KeyChecksum())
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [checksum]",
	Short: "Check the password against a stored key checksum",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !envelope.VerifyKey(requirePassword(), args[0]) {
			fmt.Println("password does not match")
			os.Exit(1)
		}
		fmt.Println("password matches")
	},
}

var sealCmd = &cobra.Command{
	Use:   "seal [infile] [outfile]",
	Short: "Encrypt a file into the framed stream format",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		in, out := openFiles(args[0], args[1])
		defer in.Close()
		defer out.Close()

		sw, err := stream.NewWriter(out, requireKey())
		if err != nil {
			fmt.Println("error initializing stream:", err)
			os.Exit(1)
		}
		if _, err := io.Copy(sw, in); err != nil {
			fmt.Println("error reading input:", err)
			os.Exit(1)
		}
		if err := sw.Close(); err != nil {
			fmt.Println("error writing sealed stream:", err)
			os.Exit(1)
		}
	},
}

var openCmd = &cobra.Command{
	Use:   "open [infile] [outfile]",
	Short: "Decrypt a file sealed in the framed stream format",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		in, out := openFiles(args[0], args[1])
		defer in.Close()
		defer out.Close()

		sr, err := stream.NewReader(in, requireKey())
		if err != nil {
			fmt.Println("error initializing stream:", err)
			os.Exit(1)
		}
		if _, err := io.Copy(out, sr); err != nil {
			fmt.Println("error reading sealed stream:", err)
			os.Exit(1)
		}
	},
}

func newEnvelope() *envelope.Simple {
	env, err := envelope.New(requirePassword(), nil)
	if err != nil {
		fmt.Println("error deriving key:", err)
		os.Exit(1)
	}
	return env
}

func requirePassword() string {
	if PasswordFlag == "" {
		fmt.Println("a password is required; pass one with --password")
		os.Exit(1)
	}
	return PasswordFlag
}

func requireKey() []byte {
	key, err := hex.DecodeString(KeyFlag)
	if err != nil || len(key) == 0 {
		fmt.Println("a hex key is required; pass one with --key")
		os.Exit(1)
	}
	return key
}

func openFiles(inPath, outPath string) (*os.File, *os.File) {
	in, err := os.Open(inPath)
	if err != nil {
		fmt.Println("error opening input:", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		in.Close()
		fmt.Println("error creating output:", err)
		os.Exit(1)
	}
	return in, out
}
