// Command kpolicyd runs the container policy decision engine: it
// seeds an in-process engine from a bootstrap file via the reference
// collaborator, then either attaches the real kernel hooks (Linux,
// given a pre-built BPF object) or serves the engine purely from
// userspace for local testing.
package main

import (
	"fmt"
	"os"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cloudnative-sec/kpolicyd/internal/collaborator"
	"github.com/cloudnative-sec/kpolicyd/internal/config"
	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "kpolicyd",
		Usage: "container policy decision engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bootstrap", Usage: "path to a bootstrap TOML file", Required: true},
			&cli.StringFlag{Name: "pin-dir", Usage: "BPF map pin directory", Value: "/sys/fs/bpf/kpolicyd"},
			&cli.StringFlag{Name: "bpf-object", Usage: "path to a pre-built BPF object implementing the tracepoint and LSM hooks"},
			&cli.BoolFlag{Name: "userspace-only", Usage: "run the engine without attaching real kernel hooks"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug-level tracing"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log.L.Logger = logrus.StandardLogger()

	bs, err := config.Load(c.String("bootstrap"))
	if err != nil {
		return err
	}

	engine := policy.NewEngine()
	ctl := collaborator.New(engine)
	if err := seed(ctl, engine, bs); err != nil {
		return err
	}

	if c.Bool("userspace-only") || c.String("bpf-object") == "" {
		logrus.Info("kpolicyd: running userspace-only, no kernel hooks attached")
		select {}
	}

	closer, err := attachHooksOrExplain(c.String("bpf-object"))
	if err != nil {
		return err
	}
	defer closer.Close()

	logrus.WithField("bpf_object", c.String("bpf-object")).Info("kpolicyd: hooks attached")
	select {}
}

func seed(ctl *collaborator.Controller, e *policy.Engine, bs *config.Bootstrap) error {
	for _, cc := range bs.Containers {
		level, err := config.ParseLevel(cc.Level)
		if err != nil {
			return err
		}
		if err := ctl.RegisterContainer(policy.ContainerID(cc.ID), level); err != nil {
			return err
		}
		if cc.InitPID != 0 {
			if err := ctl.RegisterInitProcess(policy.PID(cc.InitPID), policy.ContainerID(cc.ID)); err != nil {
				return err
			}
		}
	}

	seeds := []struct {
		table *policy.PathTable
		paths []string
	}{
		{e.AllowedPathsMountRestricted, bs.Paths.AllowedMountRestricted},
		{e.AllowedPathsMountBaseline, bs.Paths.AllowedMountBaseline},
		{e.AllowedPathsAccessRestricted, bs.Paths.AllowedAccessRestricted},
		{e.AllowedPathsAccessBaseline, bs.Paths.AllowedAccessBaseline},
		{e.DeniedPathsAccessRestricted, bs.Paths.DeniedAccessRestricted},
		{e.DeniedPathsAccessBaseline, bs.Paths.DeniedAccessBaseline},
	}
	for _, s := range seeds {
		if err := ctl.SeedPaths(s.table, s.paths); err != nil {
			return err
		}
	}
	return nil
}
