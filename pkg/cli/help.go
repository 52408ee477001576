package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	sectionIndent = "    "
	entryIndent   = "        "
)

// table lays out "label  usage  |default|" rows with the labels padded to a
// common width and the usage text wrapped to the terminal.
type table struct {
	sb         strings.Builder
	termWidth  int
	labelWidth int
	usageWidth int
}

func newTable(labels, usages []string) *table {
	t := &table{termWidth: getTerminalWidth()}
	for _, l := range labels {
		t.labelWidth = max(t.labelWidth, len(l))
	}
	for _, u := range usages {
		t.usageWidth = max(t.usageWidth, len(u))
	}
	return t
}

func (t *table) section(title string) {
	fmt.Fprintf(&t.sb, "\n%s%s\n", sectionIndent, title)
}

func (t *table) row(label, usage, marker string) {
	avail := t.termWidth - len(entryIndent) - t.labelWidth - 1
	if marker != "" {
		avail -= len(marker) + 2
	}
	avail = max(avail, 10)
	lines := wrapText(usage, avail)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	if marker != "" {
		fmt.Fprintf(&t.sb, "%s%-*s %-*s  %s\n", entryIndent, t.labelWidth, label, min(t.usageWidth, avail), first, marker)
	} else {
		fmt.Fprintf(&t.sb, "%s%-*s %s\n", entryIndent, t.labelWidth, label, first)
	}
	pad := strings.Repeat(" ", t.labelWidth+1)
	for _, l := range lines[min(1, len(lines)):] {
		fmt.Fprintf(&t.sb, "%s%s%s\n", entryIndent, pad, l)
	}
}

func (t *table) options(flags []*Flag) {
	if len(flags) == 0 {
		return
	}
	t.section("Options")
	for _, flag := range flags {
		marker := ""
		if !flag.isBool() && flag.DefValue != "" && flag.DefValue != "[]" {
			marker = "|" + flag.DefValue + "|"
		}
		t.row(flagLabel(flag), flag.Usage, marker)
	}
}

func (t *table) group(g FlagGroup) {
	t.section(g.Name)
	kind := g.GroupType
	if kind == "" {
		kind = "flag"
	}
	prefix := g.Flags[0].Prefix
	t.row(fmt.Sprintf("-%s<%s>", prefix, kind), "Enable a specific "+kind, "")
	t.row(fmt.Sprintf("-%sno-<%s>", prefix, kind), "Disable a specific "+kind, "")
	if g.AvailableFlagsHeader != "" {
		fmt.Fprintf(&t.sb, "%s%s\n", sectionIndent, g.AvailableFlagsHeader)
	}
	entries := append([]FlagGroupEntry(nil), g.Flags...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		marker := "|-|"
		if e.state() {
			marker = "|x|"
		}
		t.row(e.Name, e.Usage, marker)
	}
}

// newTable sizes the columns over every row of the page so all sections align.
func (a *App) newTable(flags []*Flag) *table {
	var labels, usages []string
	for _, flag := range flags {
		labels = append(labels, flagLabel(flag))
		usages = append(usages, flag.Usage)
	}
	for _, g := range a.FlagSet.flagGroups {
		labels = append(labels, fmt.Sprintf("-%sno-<%s>", g.Flags[0].Prefix, g.GroupType))
		for _, e := range g.Flags {
			labels = append(labels, e.Name)
			usages = append(usages, e.Usage)
		}
	}
	return newTable(labels, usages)
}

func (a *App) generateUsagePage(w io.Writer) {
	flags := a.optionFlags()
	t := a.newTable(flags)
	fmt.Fprintf(&t.sb, "Usage: %s %s\n", a.Name, a.Synopsis)
	t.options(flags)
	fmt.Fprintf(&t.sb, "\nRun '%s --help' for all available options and flags.\n", a.Name)
	fmt.Fprint(w, t.sb.String())
}

func (a *App) generateHelpPage(w io.Writer) {
	flags := a.optionFlags()
	t := a.newTable(flags)

	years := fmt.Sprint(time.Now().Year())
	if a.Since != 0 && a.Since < time.Now().Year() {
		years = fmt.Sprintf("%d-%s", a.Since, years)
	}
	fmt.Fprintf(&t.sb, "\n%sCopyright (c) %s: %s and contributors\n", sectionIndent, years, strings.Join(a.Authors, ", "))
	if a.Repository != "" {
		fmt.Fprintf(&t.sb, "%sFor more details refer to %s\n", sectionIndent, a.Repository)
	}
	if a.Synopsis != "" {
		t.section("Synopsis")
		fmt.Fprintf(&t.sb, "%s%s %s\n", entryIndent, a.Name, a.Synopsis)
	}
	if a.Description != "" {
		t.section("Description")
		for _, l := range wrapText(a.Description, max(t.termWidth-len(entryIndent), 20)) {
			fmt.Fprintf(&t.sb, "%s%s\n", entryIndent, l)
		}
	}
	t.options(flags)

	groups := append([]FlagGroup(nil), a.FlagSet.flagGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, g := range groups {
		t.group(g)
	}
	fmt.Fprint(w, t.sb.String())
}

// optionFlags returns the plain flags sorted by name, leaving out -W/-F group
// members and prefix flags.
func (a *App) optionFlags() []*Flag {
	var out []*Flag
	for _, flag := range a.FlagSet.flags {
		if _, isSpecial := a.FlagSet.specialPrefix[flag.Name]; isSpecial || a.isGroupFlag(flag.Name) {
			continue
		}
		out = append(out, flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (a *App) isGroupFlag(name string) bool {
	for _, g := range a.FlagSet.flagGroups {
		for _, e := range g.Flags {
			if name == e.Prefix+e.Name || name == e.Prefix+"no-"+e.Name {
				return true
			}
		}
	}
	return false
}

func flagLabel(flag *Flag) string {
	arg := ""
	if !flag.isBool() && flag.ExpectedType != "" {
		arg = "<" + flag.ExpectedType + ">"
	}
	switch {
	case flag.Shorthand != "" && arg != "":
		return fmt.Sprintf("-%s %s, --%s %s", flag.Shorthand, arg, flag.Name, arg)
	case flag.Shorthand != "":
		return fmt.Sprintf("-%s, --%s", flag.Shorthand, flag.Name)
	case arg != "":
		return fmt.Sprintf("--%s=%s", flag.Name, flag.ExpectedType)
	}
	return "--" + flag.Name
}

// state is the value the entry will have after parsing: the default unless
// an explicit enable/disable flag overrides it.
func (e FlagGroupEntry) state() bool {
	switch {
	case e.Disabled != nil && *e.Disabled:
		return false
	case e.Enabled != nil && *e.Enabled:
		return true
	}
	return e.Default
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if maxWidth <= 0 || len(words) == 0 {
		return words
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
