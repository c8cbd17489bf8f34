package console

import (
	"fmt"
	"sort"
	"strings"
)

type cmdFunc func(c *Console, args []string) error

// Command is a console program.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Desc    string
	Run     cmdFunc
}

type registry struct {
	primary map[string]Command
	lookup  map[string]string
}

func newRegistry() *registry {
	return &registry{
		primary: make(map[string]Command),
		lookup:  make(map[string]string),
	}
}

func (r *registry) register(cmd Command) error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return fmt.Errorf("console registry: empty command name")
	}
	if cmd.Run == nil {
		return fmt.Errorf("console registry: %q has no handler", cmd.Name)
	}
	if _, ok := r.lookup[cmd.Name]; ok {
		return fmt.Errorf("console registry: duplicate command %q", cmd.Name)
	}

	var aliases []string
	for _, alias := range cmd.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		if _, ok := r.lookup[alias]; ok || alias == cmd.Name {
			return fmt.Errorf("console registry: duplicate alias %q", alias)
		}
		aliases = append(aliases, alias)
	}

	r.primary[cmd.Name] = cmd
	r.lookup[cmd.Name] = cmd.Name
	for _, alias := range aliases {
		r.lookup[alias] = cmd.Name
	}
	return nil
}

func (r *registry) resolve(name string) (Command, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Command{}, false
	}
	if primary, ok := r.lookup[name]; ok {
		cmd, ok := r.primary[primary]
		return cmd, ok
	}
	return Command{}, false
}

func (r *registry) names() []string {
	out := make([]string, 0, len(r.primary))
	for name := range r.primary {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
