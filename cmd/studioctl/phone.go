package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"tunestudio/pkg/phone"
)

func phoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phone",
		Short: "Normalize and format Russian phone numbers",
	}

	cmd.AddCommand(phoneConvertCmd("normalize", "Print the canonical digit sequence", phone.Normalize))
	cmd.AddCommand(phoneConvertCmd("format", "Print the display form +7 (XXX) XXX-XX-XX", phone.Format))
	cmd.AddCommand(phoneConvertCmd("partial", "Print the progressive form shown while typing", phone.FormatPartial))
	cmd.AddCommand(phoneMaskCmd())

	return cmd
}

func phoneConvertCmd(use, short string, convert func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <text>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), convert(strings.Join(args, " ")))
			return err
		},
	}
}

func phoneMaskCmd() *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Drive the phone input mask from the terminal",
		Long: `Reads keystrokes line by line and prints the field after each line,
with | marking the cursor.

Plain characters are typed as-is; letters and symbols are rejected the way
the input field rejects them. Special keys are written in angle brackets:
  <bs> <del> <left> <right> <up> <down> <home> <end> <tab> <enter>

An empty line commits the field like leaving it, then the editor starts over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMask(cmd.InOrStdin(), cmd.OutOrStdout(), initial)
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "initial field content")
	return cmd
}

func runMask(in io.Reader, out io.Writer, initial string) error {
	mask := phone.NewMask(initial)
	fmt.Fprintln(out, renderField(mask))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			committed := mask.Blur(mask.Text())
			fmt.Fprintf(out, "= %s\n", committed)
			mask = phone.NewMask("")
			continue
		}

		for _, ev := range parseKeys(line) {
			mask.Press(ev)
		}
		fmt.Fprintln(out, renderField(mask))
	}
	return scanner.Err()
}

var namedKeys = map[string]phone.Key{
	"bs":    phone.KeyBackspace,
	"del":   phone.KeyDelete,
	"tab":   phone.KeyTab,
	"enter": phone.KeyEnter,
	"left":  phone.KeyLeft,
	"right": phone.KeyRight,
	"up":    phone.KeyUp,
	"down":  phone.KeyDown,
	"home":  phone.KeyHome,
	"end":   phone.KeyEnd,
}

// parseKeys turns "79<bs>2" into key events. An unknown <name> is typed
// literally, character by character.
func parseKeys(line string) []phone.KeyEvent {
	var events []phone.KeyEvent
	for len(line) > 0 {
		if line[0] == '<' {
			if end := strings.IndexByte(line, '>'); end > 0 {
				if key, ok := namedKeys[strings.ToLower(line[1:end])]; ok {
					events = append(events, phone.KeyEvent{Key: key})
					line = line[end+1:]
					continue
				}
			}
		}

		r, size := utf8.DecodeRuneInString(line)
		events = append(events, phone.KeyEvent{Key: phone.KeyRune, Rune: r})
		line = line[size:]
	}
	return events
}

func renderField(m *phone.Mask) string {
	runes := []rune(m.Text())
	return string(runes[:m.Cursor()]) + "|" + string(runes[m.Cursor():])
}
