package cmd

import (
	"fmt"
	"runtime"

	"github.com/gophertribe/devtool/build"
	"github.com/spf13/cobra"
)

const (
	binaryPath    = "dist/rotary"
	mainPackage   = "./cmd/rotary"
	configPackage = "github.com/mklimuk/rotary/pkg/config"
	builderImage  = "gophertribe/gobuild:1.25-bookworm"
)

type buildTarget struct {
	version   string
	os        string
	arch      string
	crossOS   string
	crossArch string
}

// native reports whether the target can be built with the local toolchain.
func (t buildTarget) native() bool {
	return t.os == runtime.GOOS && t.arch == runtime.GOARCH
}

// goBuildOpts resolves the cross target, falling back to os/arch when unset.
func (t buildTarget) goBuildOpts() build.GoBuildOpts {
	goos, goarch := t.os, t.arch
	if t.crossOS != "" && t.crossArch != "" {
		goos, goarch = t.crossOS, t.crossArch
	}
	return build.GoBuildOpts{
		Version:       t.version,
		InjectVersion: true,
		ConfigPackage: configPackage,
		// hid needs cgo
		EnableCgo: true,
		Arch:      goarch,
		OS:        goos,
	}
}

func (t buildTarget) dockerArgs() []string {
	return []string{"build", "--version", t.version, "--cross-os", t.crossOS, "--cross-arch", t.crossArch}
}

func BuildCmd() *cobra.Command {
	var target buildTarget
	var noCache bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the rotary cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.native() {
				return build.GoBuild(binaryPath, mainPackage, target.goBuildOpts())
			}
			err := build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", target.os, target.arch), target.dockerArgs(), build.DockerBuildOpts{
				NoCache: noCache,
				Image:   builderImage,
			})
			if err != nil {
				return fmt.Errorf("docker build for %s/%s failed: %w", target.os, target.arch, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use cache when building the app")
	cmd.Flags().StringVar(&target.version, "version", "latest", "version of the cli")
	cmd.Flags().StringVar(&target.os, "os", runtime.GOOS, "os to build for")
	cmd.Flags().StringVar(&target.arch, "arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().StringVar(&target.crossOS, "cross-os", "", "os to cross-compile for")
	cmd.Flags().StringVar(&target.crossArch, "cross-arch", "", "arch to cross-compile for")
	return cmd
}
