package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"perchbot/irc/plugins"
)

var (
	ErrDuplicate     = errors.New("name already registered")
	ErrUnknownModule = errors.New("unknown module")
	ErrNotLoadable   = errors.New("neither a command nor a plugin")
)

type (
	entry struct {
		cmd    Command
		info   Info
		module string
	}

	pluginEntry struct {
		plugin plugins.Plugin
		module string
	}

	// snapshot is never modified once published.
	snapshot struct {
		commands []entry
		byName   map[string]entry
		plugins  []pluginEntry
	}

	// Registry holds the loaded commands and plugins. Reads are lock-free; writers build a
	// new snapshot and swap it in.
	Registry struct {
		mu   sync.Mutex
		snap atomic.Pointer[snapshot]
	}
)

func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(&snapshot{byName: map[string]entry{}})
	return r
}

func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		commands: append([]entry(nil), s.commands...),
		byName:   make(map[string]entry, len(s.byName)),
		plugins:  append([]pluginEntry(nil), s.plugins...),
	}
	for k, v := range s.byName {
		next.byName[k] = v
	}
	return next
}

func (s *snapshot) addCommand(cmd Command) error {
	info := cmd.Info()
	if strings.TrimSpace(info.Name) == "" {
		return errors.New("command has no name")
	}
	e := entry{cmd: cmd, info: info, module: ModuleOf(cmd)}

	seen := map[string]bool{}
	for _, name := range info.Names() {
		key := strings.ToLower(name)
		if existing, ok := s.byName[key]; ok {
			return fmt.Errorf("%w: %q is taken by %s", ErrDuplicate, name, existing.info.Name)
		}
		if seen[key] {
			return fmt.Errorf("%w: %q is listed twice by %s", ErrDuplicate, name, info.Name)
		}
		seen[key] = true
	}
	for key := range seen {
		s.byName[key] = e
	}
	s.commands = append(s.commands, e)
	sort.Slice(s.commands, func(i, j int) bool {
		return strings.ToLower(s.commands[i].info.Name) < strings.ToLower(s.commands[j].info.Name)
	})
	return nil
}

func (s *snapshot) addPlugin(p plugins.Plugin) error {
	for _, existing := range s.plugins {
		if strings.EqualFold(existing.plugin.Name(), p.Name()) {
			return fmt.Errorf("%w: plugin %q", ErrDuplicate, p.Name())
		}
	}
	s.plugins = append(s.plugins, pluginEntry{plugin: p, module: ModuleOf(p)})
	return nil
}

func (s *snapshot) removeCommand(i int) {
	e := s.commands[i]
	for _, name := range e.info.Names() {
		delete(s.byName, strings.ToLower(name))
	}
	s.commands = append(s.commands[:i:i], s.commands[i+1:]...)
}

func (r *Registry) update(fn func(next *snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.snap.Load().clone()
	if err := fn(next); err != nil {
		return err
	}
	r.snap.Store(next)
	return nil
}

// Register adds a command. No primary name or alias may collide with a loaded one.
func (r *Registry) Register(cmd Command) error {
	return r.update(func(next *snapshot) error {
		return next.addCommand(cmd)
	})
}

func (r *Registry) AddPlugin(p plugins.Plugin) error {
	return r.update(func(next *snapshot) error {
		return next.addPlugin(p)
	})
}

// Load registers v as a command, a plugin or both. Nothing is registered if either part
// is rejected.
func (r *Registry) Load(v any) error {
	cmd, isCmd := v.(Command)
	p, isPlugin := v.(plugins.Plugin)
	if !isCmd && !isPlugin {
		return fmt.Errorf("%T: %w", v, ErrNotLoadable)
	}
	return r.update(func(next *snapshot) error {
		if isCmd {
			if err := next.addCommand(cmd); err != nil {
				return err
			}
		}
		if isPlugin {
			if err := next.addPlugin(p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Unregister removes every command and plugin of module and returns how many went.
func (r *Registry) Unregister(module string) (int, error) {
	module = strings.ToLower(module)
	removed := 0
	err := r.update(func(next *snapshot) error {
		for i := len(next.commands) - 1; i >= 0; i-- {
			if next.commands[i].module == module {
				next.removeCommand(i)
				removed++
			}
		}
		kept := next.plugins[:0:0]
		for _, p := range next.plugins {
			if p.module == module {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		next.plugins = kept
		if removed == 0 {
			return fmt.Errorf("%s: %w", module, ErrUnknownModule)
		}
		return nil
	})
	return removed, err
}

// UnregisterCommand removes the single command whose primary name is name.
func (r *Registry) UnregisterCommand(name string) bool {
	err := r.update(func(next *snapshot) error {
		for i, e := range next.commands {
			if strings.EqualFold(e.info.Name, name) {
				next.removeCommand(i)
				return nil
			}
		}
		return ErrUnknownModule
	})
	return err == nil
}

// FindByName looks a command up by primary name or alias. It returns nil when none matches.
func (r *Registry) FindByName(name string) Command {
	if e, ok := r.snap.Load().byName[strings.ToLower(name)]; ok {
		return e.cmd
	}
	return nil
}

// ListAll returns the loaded commands sorted by name.
func (r *Registry) ListAll() []Command {
	snap := r.snap.Load()
	out := make([]Command, len(snap.commands))
	for i, e := range snap.commands {
		out[i] = e.cmd
	}
	return out
}

// Plugins returns the loaded plugins in load order.
func (r *Registry) Plugins() []plugins.Plugin {
	snap := r.snap.Load()
	out := make([]plugins.Plugin, len(snap.plugins))
	for i, p := range snap.plugins {
		out[i] = p.plugin
	}
	return out
}

func (r *Registry) Loaded(module string) bool {
	module = strings.ToLower(module)
	snap := r.snap.Load()
	for _, e := range snap.commands {
		if e.module == module {
			return true
		}
	}
	for _, p := range snap.plugins {
		if p.module == module {
			return true
		}
	}
	return false
}

// Modules lists the distinct loaded module names, sorted.
func (r *Registry) Modules() []string {
	snap := r.snap.Load()
	set := map[string]struct{}{}
	for _, e := range snap.commands {
		set[e.module] = struct{}{}
	}
	for _, p := range snap.plugins {
		set[p.module] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
