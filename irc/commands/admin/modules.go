package admin

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"perchbot/irc/access"
	"perchbot/irc/commands"
	"perchbot/irc/state"
)

// modules loads and unloads catalog modules at runtime.
type modules struct {
	registry *commands.Registry
	catalog  *commands.Catalog
}

func NewModules(r *commands.Registry, cat *commands.Catalog) *modules {
	return &modules{registry: r, catalog: cat}
}

func (m *modules) Info() commands.Info {
	return commands.Info{
		Name:    "modules",
		Help:    "Loads or unloads commands and plugins.",
		Level:   access.Root,
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-load", Help: "Loads the given module into the bot's runtime."},
			{Name: "-unload", Help: "Unloads the given module from the bot's runtime."},
			{Name: "-list", Help: "Lists the loaded and the available modules."},
		},
		Example: "modules -unload:modules",
	}
}

func (m *modules) Run(s *state.State) error {
	switch {
	case s.HasFlag("list"):
		m.list(s)
		return nil
	case s.HasFlag("load"):
		return m.load(s, strings.ToLower(s.ConsumeFlag("load")))
	case s.HasFlag("unload"):
		return m.unload(s, strings.ToLower(s.ConsumeFlag("unload")))
	}
	return errors.New("use -load, -unload or -list")
}

func (m *modules) list(s *state.State) {
	loaded := m.registry.Modules()
	var available []string
	for _, name := range m.catalog.Names() {
		if !slices.Contains(loaded, name) {
			available = append(available, name)
		}
	}
	s.Send("[b]Loaded:[/b] " + strings.Join(loaded, ", "))
	if len(available) > 0 {
		s.Send("[b]Available:[/b] " + strings.Join(available, ", "))
	}
}

func (m *modules) load(s *state.State, module string) error {
	if m.registry.Loaded(module) {
		s.Send("This module is already loaded.")
		return nil
	}
	v, err := m.catalog.New(module)
	if errors.Is(err, commands.ErrUnknownModule) {
		s.Send("This module doesn't exist.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.registry.Load(v); err != nil {
		return fmt.Errorf("loading %s: %w", module, err)
	}
	s.Logger().Info("Module loaded", "module", module)
	s.Send(fmt.Sprintf("Loaded the module \"%s\"", module))
	return nil
}

func (m *modules) unload(s *state.State, module string) error {
	if !m.registry.Loaded(module) {
		if slices.Contains(m.catalog.Names(), module) {
			s.Send("This module is already unloaded.")
		} else {
			s.Send("This module doesn't exist.")
		}
		return nil
	}
	if _, err := m.registry.Unregister(module); err != nil {
		return err
	}
	s.Logger().Info("Module unloaded", "module", module)
	s.Send(fmt.Sprintf("Unloaded the module \"%s\"", module))
	return nil
}
