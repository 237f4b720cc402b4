package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v3"

	"github.com/starford/streammark/internal/markservice"
	"github.com/starford/streammark/internal"
	"github.com/starford/streammark/internal/settings"
	"github.com/starford/streammark/internal/storage"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return internal.ServeMCP(ctx, a, os.Stdin, os.Stdout, slog.Default(), version)
		},
	}
}

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "Record a moment now",
		ArgsUsage: "MEMO",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Usage:   "Use the memo pattern at this zero-based position instead of MEMO",
				Value:   -1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			memo := cmd.Args().First()
			if i := int(cmd.Int("pattern")); i >= 0 {
				list := a.Service.Patterns()
				if i >= len(list) {
					return fmt.Errorf("no pattern at position %d (have %d)", i, len(list))
				}
				memo = list[i]
			}
			e, err := a.Service.Record(memo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "recorded %q at %s\n", e.Memo, e.Time().Format("15:04:05"))
			return nil
		},
	}
}

func patternsCommand() *cli.Command {
	return &cli.Command{
		Name:  "patterns",
		Usage: "Manage quick-record memo patterns",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show patterns with their positions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					printPatterns(cmd.Root().Writer, a.Service.Patterns())
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add a pattern",
				ArgsUsage: "PATTERN",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					added, err := a.Service.AddPattern(cmd.Args().First())
					if err != nil {
						return err
					}
					if !added {
						fmt.Fprintln(cmd.Root().Writer, "pattern unchanged: blank or already present")
					}
					printPatterns(cmd.Root().Writer, a.Service.Patterns())
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove the pattern at a zero-based position",
				ArgsUsage: "INDEX",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					index, err := strconv.Atoi(cmd.Args().First())
					if err != nil {
						return fmt.Errorf("INDEX must be an integer: %w", err)
					}
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					if err := a.Service.RemovePattern(index); err != nil {
						return err
					}
					printPatterns(cmd.Root().Writer, a.Service.Patterns())
					return nil
				},
			},
		},
	}
}

func printPatterns(w io.Writer, list []string) {
	for i, p := range list {
		fmt.Fprintf(w, "%d\t%s\n", i, p)
	}
}

func logCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show or reset the moment log",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the log",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					if text := a.Service.Log().Text; text != "" {
						fmt.Fprintln(cmd.Root().Writer, text)
					}
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Delete every recorded moment",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					c := newPrompt(os.Stdin, cmd.Root().Writer)
					if cmd.Bool("yes") {
						c = assumeYes
					}
					cleared, err := a.Service.ResetLog(c)
					if err != nil {
						return err
					}
					if cleared {
						fmt.Fprintln(cmd.Root().Writer, "log cleared")
					} else {
						fmt.Fprintln(cmd.Root().Writer, "log unchanged")
					}
					return nil
				},
			},
		},
	}
}

func apiKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "apikey",
		Usage: "Manage the saved YouTube Data API key",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Save a key",
				ArgsUsage: "KEY",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					if err := a.Service.SetAPIKey(cmd.Args().First()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, "api key saved")
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Show the saved key, masked",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := openApp(cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					key, err := a.Service.APIKey()
					if err != nil {
						return err
					}
					if key == "" {
						fmt.Fprintln(cmd.Root().Writer, "no api key saved")
						return nil
					}
					fmt.Fprintln(cmd.Root().Writer, settings.Mask(key))
					return nil
				},
			},
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Print YouTube chapter lines for the recorded log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "YouTube video URL", Required: true},
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "YouTube Data API key (defaults to the saved key)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Also write the result to this file inside export.dir"},
			&cli.BoolFlag{Name: "copy", Usage: "Copy the result to the clipboard"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.Service.Convert(ctx, markservice.ConvertRequest{
				URL:    cmd.String("url"),
				APIKey: cmd.String("key"),
				SaveAs: cmd.String("out"),
			})
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			fmt.Fprintln(w, res.Text)
			if res.SavedTo != "" {
				fmt.Fprintf(cmd.Root().ErrWriter, "saved to %s\n", res.SavedTo)
			}
			if cmd.Bool("copy") {
				return copyText(cmd.Root().ErrWriter, res.Text)
			}
			return nil
		},
	}
}

func copyCommand() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy an exported chapter file (newest by default) to the clipboard",
		ArgsUsage: "[FILE]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exports, err := storage.NewFS(cfg.Export.Dir)
			if err != nil {
				return err
			}
			text, err := exportText(exports, cmd.Args().First())
			if err != nil {
				return err
			}
			return copyText(cmd.Root().Writer, text)
		},
	}
}

// exportText reads name from exports, or the newest export when name is empty.
func exportText(exports *storage.FS, name string) (string, error) {
	if name == "" {
		files, err := exports.List()
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "", nil
		}
		name = files[0].Path
	}
	data, err := exports.Read(name)
	if err != nil {
		return "", fmt.Errorf("read export %s: %w", name, err)
	}
	return string(data), nil
}

var writeClipboard = func(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not available on this system")
	}
	return clipboard.WriteAll(text)
}

func copyText(w io.Writer, text string) error {
	if text == "" {
		fmt.Fprintln(w, "nothing to copy")
		return nil
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	fmt.Fprintln(w, "copied to clipboard")
	return nil
}
