// Command kpolicyctl is an operator tool for validating a bootstrap
// TOML file and dumping the currently pinned BPF map contents for
// debugging. It owns no state of its own — everything it prints comes
// from the maps or the file the operator points it at.
package main

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/cloudnative-sec/kpolicyd/internal/config"
	"github.com/cloudnative-sec/kpolicyd/internal/ebpfmaps"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "kpolicyctl",
		Usage: "inspect and validate kpolicyd configuration",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "parse a bootstrap TOML file and report any errors",
				ArgsUsage: "<bootstrap.toml>",
				Action:    validate,
			},
			{
				Name:  "dump",
				Usage: "print the currently pinned BPF map contents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pin-dir", Usage: "BPF map pin directory", Value: "/sys/fs/bpf/kpolicyd"},
				},
				Action: dump,
			},
		},
	}
}

func validate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: kpolicyctl validate <bootstrap.toml>", 1)
	}
	bs, err := config.Load(path)
	if err != nil {
		return err
	}

	levels := lo.Map(bs.Containers, func(cc config.ContainerConfig, _ int) string {
		return fmt.Sprintf("container %d: level=%s init_pid=%d", cc.ID, cc.Level, cc.InitPID)
	})
	for _, l := range levels {
		fmt.Println(l)
	}
	for _, cc := range bs.Containers {
		if _, err := config.ParseLevel(cc.Level); err != nil {
			return err
		}
	}
	fmt.Printf("ok: %d container(s), %d allowed-mount-restricted path(s)\n",
		len(bs.Containers), len(bs.Paths.AllowedMountRestricted))
	return nil
}

func dump(c *cli.Context) error {
	loader := &ebpfmaps.Loader{PinDir: c.String("pin-dir")}
	maps, err := loader.Open()
	if err != nil {
		return err
	}
	defer maps.Close()

	lines, err := ebpfmaps.DumpAll(maps)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}
