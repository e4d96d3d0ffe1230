// Package checker describes the external type checkers typewatch can drive
// and spawns them with their output streamed back in chunks.
package checker

import (
	"fmt"
	"regexp"
	"sort"
)

// Markers recognise pass boundaries in a checker's watch-mode output. Both
// expressions are matched against the whole text accumulated since the last
// completed pass.
type Markers struct {
	Rerun    *regexp.Regexp // the tool restarted a pass after a file change
	Complete *regexp.Regexp // the tool finished a pass and waits for changes
}

// Default tsc watch markers.
var (
	DefaultRerun    = regexp.MustCompile(`File change detected`)
	DefaultComplete = regexp.MustCompile(`Found \w+ errors?\. Watching for`)
)

// RerunStarted reports whether buf announces a restarted pass.
func (m Markers) RerunStarted(buf string) bool {
	return m.Rerun != nil && m.Rerun.MatchString(buf)
}

// PassComplete reports whether buf contains the end of a pass.
func (m Markers) PassComplete(buf string) bool {
	return m.Complete != nil && m.Complete.MatchString(buf)
}

// CompileMarkers builds Markers from config strings; empty strings keep the defaults.
func CompileMarkers(rerun, complete string) (Markers, error) {
	m := Markers{Rerun: DefaultRerun, Complete: DefaultComplete}
	if rerun != "" {
		re, err := regexp.Compile(rerun)
		if err != nil {
			return Markers{}, fmt.Errorf("invalid rerun marker: %w", err)
		}
		m.Rerun = re
	}
	if complete != "" {
		re, err := regexp.Compile(complete)
		if err != nil {
			return Markers{}, fmt.Errorf("invalid complete marker: %w", err)
		}
		m.Complete = re
	}
	return m, nil
}

// Profile describes how to invoke one checker.
type Profile struct {
	Name        string
	Command     string
	Args        []string // "{config}" is replaced by the temporary config path
	WatchArgs   []string
	AllowJSArgs []string
	Markers     Markers
}

const configPlaceholder = "{config}"

var profiles = map[string]Profile{
	"tsc": {
		Name:        "tsc",
		Command:     "tsc",
		Args:        []string{"--noEmit", "--pretty", "false", "-p", configPlaceholder},
		WatchArgs:   []string{"--watch"},
		AllowJSArgs: []string{"--allowJs", "--checkJs"},
		Markers:     Markers{Rerun: DefaultRerun, Complete: DefaultComplete},
	},
	"vue-tsc": {
		Name:        "vue-tsc",
		Command:     "vue-tsc",
		Args:        []string{"--noEmit", "--pretty", "false", "-p", configPlaceholder},
		WatchArgs:   []string{"--watch"},
		AllowJSArgs: []string{"--allowJs", "--checkJs"},
		Markers:     Markers{Rerun: DefaultRerun, Complete: DefaultComplete},
	},
}

// Lookup returns the built-in profile called name.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown checker %q (known: %v)", name, Names())
	}
	return p, nil
}

// Names lists built-in profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Command is a resolved process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// CommandFor resolves the invocation for a config path.
func (p Profile) CommandFor(configPath, dir string, watch, allowJS bool) Command {
	args := make([]string, 0, len(p.Args)+len(p.WatchArgs)+len(p.AllowJSArgs))
	for _, a := range p.Args {
		if a == configPlaceholder {
			a = configPath
		}
		args = append(args, a)
	}
	if watch {
		args = append(args, p.WatchArgs...)
	}
	if allowJS {
		args = append(args, p.AllowJSArgs...)
	}
	return Command{Name: p.Command, Args: args, Dir: dir}
}
