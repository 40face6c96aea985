package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zavo/tiltmaze/internal/maze"
	"github.com/zavo/tiltmaze/internal/maze/levels"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir|file...]",
	Short: "Validate level files",
	Long: `Parses and validates level files, reporting every invalid one.

Arguments may be directories (scanned recursively for .xml, .yaml, .yml and
.toml files) or single files. Without arguments the active level set is
checked.

Exits with status 1 when any level is invalid.

Examples:
  maze check
  maze check ./my-levels
  maze check ./my-levels/05-bridge.yaml`,
	Run: runCheck,
}

func runCheck(_ *cobra.Command, args []string) {
	if len(args) == 0 {
		cfg, err := loadConfig()
		if err != nil {
			fatalf("%v", err)
		}
		if cfg.Levels.Dir == "" {
			args = []string{""}
		} else {
			args = []string{cfg.Levels.Dir}
		}
	}

	var total, invalid int
	for _, arg := range args {
		entries, err := checkPath(arg)
		if err != nil {
			fatalf("%v", err)
		}
		for _, e := range entries {
			total++
			if e.Err != nil {
				invalid++
			}
			printEntry(e)
		}
	}

	fmt.Println()
	fmt.Printf("%d level(s), %d invalid\n", total, invalid)
	if invalid > 0 {
		os.Exit(1)
	}
}

// checkPath scans a directory, or checks a single file. An empty path is the
// built-in level set.
func checkPath(p string) ([]levels.Entry, error) {
	if p == "" {
		return levels.Builtin().Scan()
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		entries, err := levels.Open(p).Scan()
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].Path = filepath.Join(p, entries[i].Path)
		}
		return entries, nil
	}

	spec, err := levels.NewLoader(filepath.Dir(p)).LoadFile(filepath.Base(p))
	if err == nil {
		_, err = maze.NewLevel(spec)
	}
	return []levels.Entry{{Path: p, Spec: spec, Err: err}}, nil
}

func printEntry(e levels.Entry) {
	if e.Err == nil {
		fmt.Printf("  ok       %s (%s)\n", e.Path, e.Spec.ID)
		return
	}

	var lfe *maze.LevelFormatError
	if errors.As(e.Err, &lfe) {
		field := lfe.Field
		if field == "" {
			field = "-"
		}
		cause := "invalid"
		if lfe.Err != nil {
			cause = lfe.Err.Error()
		}
		fmt.Printf("  INVALID  %s: %s: %s\n", e.Path, field, cause)
		return
	}
	fmt.Printf("  INVALID  %s: %v\n", e.Path, e.Err)
}
