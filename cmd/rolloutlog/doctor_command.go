package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"rolloutlog/internal/profilelog"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

type checkResult struct {
	Name   string
	Passed bool
	Detail string
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the log root is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logDir := cfg.LogDir()

			results := []checkResult{
				checkLogDir(logDir),
				checkWritable(logDir),
				checkFreeSpace(logDir),
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "worker log path for current context: %s\n",
				profilelog.PathSpec{Dir: logDir}.Resolve())
			failed := 0
			for _, result := range results {
				fmt.Fprintln(out, renderCheck(result, colorize))
				if !result.Passed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	return cmd
}

func checkLogDir(dir string) checkResult {
	const name = "log directory"
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Workers create it lazily; report what a write would do.
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return checkResult{Name: name, Detail: fmt.Sprintf("cannot create %s: %v", dir, err)}
			}
			return checkResult{Name: name, Passed: true, Detail: dir + " (created)"}
		}
		return checkResult{Name: name, Detail: err.Error()}
	}
	if !info.IsDir() {
		return checkResult{Name: name, Detail: dir + " is not a directory"}
	}
	return checkResult{Name: name, Passed: true, Detail: dir}
}

func checkWritable(dir string) checkResult {
	const name = "log directory access"
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return checkResult{Name: name, Detail: fmt.Sprintf("%s not read/write accessible: %v", dir, err)}
	}
	return checkResult{Name: name, Passed: true, Detail: "read/write ok"}
}

func checkFreeSpace(dir string) checkResult {
	const name = "free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return checkResult{Name: name, Detail: fmt.Sprintf("statfs %s: %v", dir, err)}
	}
	freeBytes := stat.Bavail * uint64(stat.Bsize)
	const minFree = 64 << 20
	detail := fmt.Sprintf("%d MiB available", freeBytes>>20)
	if freeBytes < minFree {
		return checkResult{Name: name, Detail: detail + " (below 64 MiB)"}
	}
	return checkResult{Name: name, Passed: true, Detail: detail}
}

func renderCheck(result checkResult, colorize bool) string {
	status := "FAIL"
	color := ansiRed
	if result.Passed {
		status = "OK"
		color = ansiGreen
	}
	if colorize {
		status = color + status + ansiReset
	}
	return fmt.Sprintf("%-4s %s: %s", status, result.Name, result.Detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
