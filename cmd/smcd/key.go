package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/smc"
)

var (
	// directAccess bypasses the daemon and opens the SMC in this process.
	directAccess = false
	maxLen       = -1
)

// directSMC returns an SMC handle using the policies from the config file.
func directSMC() *smc.AppleSMC {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.WithError(err).Warn("failed to load config, using built-in transfer policies")
		return smc.New()
	}
	return smc.New(smc.WithPolicies(conf.Policies()))
}

func addDirectFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&directAccess, "direct", false,
		"Talk to the SMC directly instead of through the daemon. Usually requires root.")
}

func NewReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "read KEY",
		Short:   "Read the value of a key",
		GroupID: gKeys,
		Long: `Read the value of a key.

KEY is a four character code, for example TB0T. The value is printed in host
byte order as hex. Use --max-len to read only the first bytes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v *smc.Value
			if directAccess {
				k, err := smc.ParseKey(args[0])
				if err != nil {
					return err
				}
				n := maxLen
				if n < 0 {
					n = smc.MaxDataSize
				}
				val, err := directSMC().ReadValue(k, n)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				v = &val
			} else {
				val, err := apiClient.ReadKey(args[0], maxLen)
				if err != nil {
					return err
				}
				v = val
			}

			printValue(cmd, v)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxLen, "max-len", -1, "maximum number of bytes to read (default: whole value)")
	addDirectFlag(cmd)

	return cmd
}

func NewWriteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "write KEY HEX",
		Short:   "Write a value to a key",
		GroupID: gKeys,
		Long: `Write a value to a key.

HEX is the value in controller byte order, for example 0001 or 0x0001.
At most as many bytes as the key holds are written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := parseHexArg(args[1])
			if err != nil {
				return err
			}

			if directAccess {
				if err := directSMC().Write(args[0], data); err != nil {
					return err
				}
			} else {
				ret, err := apiClient.WriteKey(args[0], data)
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				if ret != "" {
					logrus.Debugf("daemon responded: %s", ret)
				}
			}

			logrus.Infof("successfully wrote %s to %s", smc.HexBytes(data), args[0])
			return nil
		},
	}

	addDirectFlag(cmd)

	return cmd
}

func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info KEY",
		Short:   "Show the type and size of a key",
		GroupID: gKeys,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v *smc.Value
			if directAccess {
				k, err := smc.ParseKey(args[0])
				if err != nil {
					return err
				}
				info, err := directSMC().KeyInfo(k)
				if err != nil {
					return fmt.Errorf("failed to get info of %s: %w", args[0], err)
				}
				v = &smc.Value{Key: k.String(), DataType: info.DataType.String(), DataSize: info.DataSize}
			} else {
				val, err := apiClient.KeyInfo(args[0])
				if err != nil {
					return err
				}
				v = val
			}

			cmd.Printf("%s  type %s  size %s\n", bold("%s", v.Key), bold("%q", v.DataType), bold("%d", v.DataSize))
			return nil
		},
	}

	addDirectFlag(cmd)

	return cmd
}

func printValue(cmd *cobra.Command, v *smc.Value) {
	cmd.Printf("%s  type %s  size %s\n", bold("%s", v.Key), bold("%q", v.DataType), bold("%d", v.DataSize))
	if len(v.Bytes) == 0 {
		cmd.Println("  (empty)")
		return
	}
	cmd.Printf("  %s\n", formatHex(v.Bytes))
}
