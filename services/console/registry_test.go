package console

import "testing"

func nopCmd(*Console, []string) error { return nil }

func TestRegistryResolveAlias(t *testing.T) {
	r := newRegistry()
	if err := r.register(Command{Name: "ps", Aliases: []string{"top", " "}, Run: nopCmd}); err != nil {
		t.Fatalf("register() = %v", err)
	}
	for _, name := range []string{"ps", "top", " top "} {
		cmd, ok := r.resolve(name)
		if !ok || cmd.Name != "ps" {
			t.Fatalf("resolve(%q) = %q, %v, want ps, true", name, cmd.Name, ok)
		}
	}
	if _, ok := r.resolve(""); ok {
		t.Fatalf("resolve(\"\") ok, want not found")
	}
	if got := r.names(); len(got) != 1 || got[0] != "ps" {
		t.Fatalf("names() = %v, want [ps]", got)
	}
}

func TestRegistryRejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"empty name", Command{Name: "  ", Run: nopCmd}},
		{"no handler", Command{Name: "x"}},
		{"duplicate name", Command{Name: "ps", Run: nopCmd}},
		{"name taken by alias", Command{Name: "top", Run: nopCmd}},
		{"duplicate alias", Command{Name: "y", Aliases: []string{"top"}, Run: nopCmd}},
		{"alias equals name", Command{Name: "z", Aliases: []string{"z"}, Run: nopCmd}},
	}
	for _, tt := range tests {
		r := newRegistry()
		if err := r.register(Command{Name: "ps", Aliases: []string{"top"}, Run: nopCmd}); err != nil {
			t.Fatalf("register(ps) = %v", err)
		}
		if err := r.register(tt.cmd); err == nil {
			t.Fatalf("%s: register() = nil, want error", tt.name)
		}
		if _, ok := r.resolve("y"); ok {
			t.Fatalf("%s: failed register left an entry behind", tt.name)
		}
	}
}
