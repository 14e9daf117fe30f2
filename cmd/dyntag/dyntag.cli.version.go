package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionOutput represents structured output for version
type versionOutput struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func newVersionCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   CmdNameVersion,
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := getVersionInfo()
			if s.format != OutputFormatText {
				return writeStructured(cmd.OutOrStdout(), s.format, v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), VersionTextTemplate+FmtNewline, v.Version, v.GoVersion)
			return nil
		},
	}
}

// getVersionInfo reads the module version from the build info
func getVersionInfo() versionOutput {
	v := versionOutput{Version: VersionUnknown, GoVersion: runtime.Version()}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Path == ModulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
		return v
	}
	for _, dep := range info.Deps {
		if dep.Path == ModulePath {
			v.Version = dep.Version
		}
	}
	return v
}
