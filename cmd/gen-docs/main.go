package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stigoleg/stayactive/internal/cli"
)

// This small tool writes shell completions and a man page for the command
// tree into docs/completions and man/.

const appDescription = "keep a Linux desktop session active by simulating input"

func main() {
	root := cli.NewRootCommand("", cli.DefaultDeps())

	if err := writeCompletions(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeMan(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCompletions(root *cobra.Command) error {
	base := filepath.Join("docs", "completions")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return err
	}
	name := root.Name()
	if err := root.GenBashCompletionFileV2(filepath.Join(base, name+".bash"), true); err != nil {
		return err
	}
	if err := root.GenZshCompletionFile(filepath.Join(base, "_"+name)); err != nil {
		return err
	}
	return root.GenFishCompletionFile(filepath.Join(base, name+".fish"), true)
}

func writeMan(root *cobra.Command) error {
	if err := os.MkdirAll("man", 0o755); err != nil {
		return err
	}
	name := root.Name()

	var b strings.Builder
	b.WriteString(".TH \"" + strings.ToUpper(name) + "\" \"1\" \"\" \"" + name + "\" \"User Commands\"\n")
	b.WriteString(".SH NAME\n" + name + " \\- " + appDescription + "\n")
	b.WriteString(".SH SYNOPSIS\n.B " + name + "\n[flags]\n.br\n.B " + name + "\nmonitors [\\-\\-output text|json|yaml]\n")
	b.WriteString(".SH DESCRIPTION\n" + roffEscape(root.Long) + "\n")
	b.WriteString(".SH OPTIONS\n")
	writeFlags(&b, root.PersistentFlags())
	writeFlags(&b, root.Flags())
	for _, sub := range root.Commands() {
		if sub.Hidden || !sub.IsAvailableCommand() {
			continue
		}
		b.WriteString(".SH " + strings.ToUpper(sub.Name()) + "\n" + roffEscape(sub.Short) + "\n")
		writeFlags(&b, sub.LocalFlags())
	}
	b.WriteString(".SH EXAMPLES\n")
	b.WriteString(".TP\n\\fB" + name + "\\fR\nMove the pointer and press a modifier every 60 seconds.\n")
	b.WriteString(".TP\n\\fB" + name + " \\-\\-interval 30 \\-\\-mouse\\-only\\fR\nOnly move the pointer, every 30 seconds.\n")
	b.WriteString(".TP\n\\fB" + name + " monitors \\-o yaml\\fR\nShow the detected monitor layout.\n")
	b.WriteString(".SH ENVIRONMENT\nEvery option can be set as STAYACTIVE_<OPTION>, e.g. STAYACTIVE_INTERVAL=90s.\n")
	return os.WriteFile(filepath.Join("man", name+".1"), []byte(b.String()), 0o644)
}

func writeFlags(b *strings.Builder, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		names := "\\-\\-" + roffEscape(f.Name)
		if f.Shorthand != "" {
			names = "\\-" + f.Shorthand + ", " + names
		}
		if t := f.Value.Type(); t != "bool" {
			names += " <" + t + ">"
		}
		b.WriteString(".TP\n\\fB" + names + "\\fR\n" + roffEscape(f.Usage))
		if f.DefValue != "" && f.DefValue != "false" {
			b.WriteString(" (default " + roffEscape(f.DefValue) + ")")
		}
		b.WriteString("\n")
	})
}

func roffEscape(s string) string {
	return strings.ReplaceAll(s, "-", "\\-")
}
