// Package cli is a small GNU-style flag parser with grouped -W/-F switches
// and terminal-aware help pages.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Value interface {
	String() string
	Set(string) error
	Get() any
}

type stringValue struct{ p *string }

func (v stringValue) Set(s string) error { *v.p = s; return nil }
func (v stringValue) String() string     { return *v.p }
func (v stringValue) Get() any           { return *v.p }

// boolValue treats a bare flag (empty value) as true.
type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = b
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v *boolValue) Get() any       { return *v.p }

type listValue struct{ p *[]string }

func (v listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v listValue) String() string     { return strings.Join(*v.p, ", ") }
func (v listValue) Get() any           { return *v.p }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

func (f *Flag) isBool() bool {
	_, ok := f.Value.(*boolValue)
	return ok
}

type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

// FlagGroupEntry is one switchable item of a group; it defines the pair of
// flags Prefix+Name and Prefix+"no-"+Name.
type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Default  bool
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name          string
	flags         map[string]*Flag
	shorthands    map[string]*Flag
	specialPrefix map[string]*Flag
	visited       map[string]bool
	args          []string
	flagGroups    []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:          name,
		flags:         make(map[string]*Flag),
		shorthands:    make(map[string]*Flag),
		specialPrefix: make(map[string]*Flag),
		visited:       make(map[string]bool),
	}
}

// Args returns the positional arguments left after Parse.
func (f *FlagSet) Args() []string { return f.args }

// Visited reports whether the named flag was given on the command line.
func (f *FlagSet) Visited(name string) bool { return f.visited[name] }

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) List(p *[]string, name, shorthand string, value []string, usage, expectedType string) {
	*p = value
	f.Var(listValue{p}, name, shorthand, usage, fmt.Sprintf("%v", value), expectedType)
}

// Special registers a prefix flag whose value is glued to it, as in -DNAME.
func (f *FlagSet) Special(p *[]string, prefix, usage, expectedType string) {
	*p = []string{}
	f.Var(listValue{p}, prefix, "", usage, "", expectedType)
	f.specialPrefix[prefix] = f.flags[prefix]
}

func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	for _, e := range entries {
		if e.Enabled != nil {
			f.Bool(e.Enabled, e.Prefix+e.Name, "", *e.Enabled, e.Usage)
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, e.Prefix+"no-"+e.Name, "", *e.Disabled, "Disable '"+e.Name+"'")
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name:                 name,
		Description:          description,
		Flags:                entries,
		GroupType:            groupType,
		AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("cli: flag name cannot be empty")
	}
	if _, dup := f.flags[name]; dup {
		panic("cli: flag redefined: " + name)
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	f.flags[name] = flag
	if shorthand == "" {
		return
	}
	if _, dup := f.shorthands[shorthand]; dup {
		panic("cli: shorthand flag redefined: " + shorthand)
	}
	f.shorthands[shorthand] = flag
}

func (f *FlagSet) set(flag *Flag, value string) error {
	f.visited[flag.Name] = true
	return flag.Value.Set(value)
}

// Parse consumes arguments. A single-dash argument is first matched against
// whole flag names (so -Wall and -Fno-dce work), then prefix flags, then
// shorthands. Everything after "--" is positional.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
			continue
		}

		long := strings.HasPrefix(arg, "--")
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		dash := "-"
		if long {
			dash = "--"
		}
		if name == "" {
			return fmt.Errorf("empty flag name")
		}

		flag := f.flags[name]
		if flag == nil && !long {
			var err error
			if flag, value, hasValue, err = f.matchShort(arg); err != nil {
				return err
			}
			name = flag.Shorthand
			if name == "" {
				name = flag.Name
			}
		}
		if flag == nil {
			return fmt.Errorf("unknown flag: %s%s", dash, name)
		}

		if !hasValue && !flag.isBool() {
			if i+1 >= len(arguments) {
				return fmt.Errorf("flag needs an argument: %s%s", dash, name)
			}
			i++
			value = arguments[i]
		}
		if err := f.set(flag, value); err != nil {
			return err
		}
	}
	return nil
}

// matchShort resolves a single-dash argument that is not a full flag name:
// either a prefix flag with its value attached or a one-letter shorthand
// optionally followed by its value (-ofile).
func (f *FlagSet) matchShort(arg string) (flag *Flag, value string, hasValue bool, err error) {
	for prefix, fl := range f.specialPrefix {
		if rest, ok := strings.CutPrefix(arg, "-"+prefix); ok && rest != "" {
			return fl, rest, true, nil
		}
	}
	fl, ok := f.shorthands[arg[1:2]]
	if !ok {
		return nil, "", false, fmt.Errorf("unknown shorthand flag: -%s", arg[1:2])
	}
	if fl.isBool() {
		return fl, "", true, nil
	}
	rest := arg[2:]
	return fl, rest, rest != "", nil
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	Since       int
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

// Run parses arguments, handles -h/--help and hands the positional
// arguments to Action.
func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name, err)
		a.generateUsagePage(os.Stderr)
		return err
	}
	if help {
		a.generateHelpPage(os.Stdout)
		return nil
	}
	if a.Action == nil {
		return nil
	}
	return a.Action(a.FlagSet.Args())
}
