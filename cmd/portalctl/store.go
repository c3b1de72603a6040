package main

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/infra/redis"
	"rbx/logicore/pkg/securestore"
)

func newStoreCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read and write the encrypted key/value store",
	}

	// open 按配置打开存储；返回的 close 释放 Redis 连接
	open := func() (*securestore.Store, func(), error) {
		var client *goredis.Client
		if c.cfg.Store.Backend == config.BackendRedis {
			rdb, err := redis.NewClient(c.cfg.Redis)
			if err != nil {
				return nil, nil, err
			}
			client = rdb
		}
		closeFn := func() {
			if client != nil {
				_ = client.Close()
			}
		}

		s, err := securestore.NewFromConfig(c.cfg.Store, client, c.logger)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return s, closeFn, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Encrypt and store a value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open()
				if err != nil {
					return err
				}
				defer closeFn()
				return s.SetItem(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Decrypt and print a value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open()
				if err != nil {
					return err
				}
				defer closeFn()

				v, ok, err := s.GetItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("key %q not found", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm KEY",
			Aliases: []string{"remove"},
			Short:   "Remove a value",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open()
				if err != nil {
					return err
				}
				defer closeFn()
				s.RemoveItem(cmd.Context(), args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open()
				if err != nil {
					return err
				}
				defer closeFn()
				s.Clear(cmd.Context())
				return nil
			},
		},
	)
	return cmd
}
