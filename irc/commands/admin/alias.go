package admin

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"perchbot/irc/access"
	"perchbot/irc/commands"
	"perchbot/irc/state"
	"perchbot/logger"
	"perchbot/perchbase"
)

const aliasesKey = "aliases"

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// Definition is a stored alias. Template is a full command line; {0}, {1} and so on are
// replaced with the capture groups of Structure.
type Definition struct {
	Name        string       `json:"name"`
	Template    string       `json:"template"`
	Structure   string       `json:"structure,omitempty"`
	Escape      bool         `json:"escape,omitempty"`
	Description string       `json:"description,omitempty"`
	Level       access.Level `json:"level"`
	Example     string       `json:"example,omitempty"`
}

// Fingerprint identifies this exact version of the definition.
func (d Definition) Fingerprint() string {
	return perchbase.Fingerprint(strings.Join([]string{d.Name, d.Template, d.Structure, strconv.FormatBool(d.Escape)}, "\x00"))
}

// aliasCommand runs a Definition.
type aliasCommand struct {
	def        Definition
	structure  *regexp.Regexp
	dispatcher Redispatcher
}

func newAliasCommand(def Definition, d Redispatcher) (*aliasCommand, error) {
	c := &aliasCommand{def: def, dispatcher: d}
	if def.Structure != "" {
		re, err := regexp.Compile(def.Structure)
		if err != nil {
			return nil, fmt.Errorf("invalid structure: %w", err)
		}
		c.structure = re
	}
	return c, nil
}

func (c *aliasCommand) Module() string {
	return "alias:" + c.def.Name
}

func (c *aliasCommand) Info() commands.Info {
	help := c.def.Description
	if help == "" {
		help = "Alias for \"" + c.def.Template + "\"."
	}
	return commands.Info{
		Name:    c.def.Name,
		Help:    help,
		Level:   c.def.Level,
		Serious: true,
		Example: c.def.Example,
	}
}

func (c *aliasCommand) Run(s *state.State) error {
	text, ok := c.expand(s.Message())
	if !ok {
		return nil
	}
	return c.dispatcher.Redispatch(s.Ctx, s.Incoming.WithText(text), s.Depth+1)
}

// expand fills the template from input. It reports false when input does not fit the
// structure or the template asks for a group that did not match.
func (c *aliasCommand) expand(input string) (string, bool) {
	if c.structure == nil {
		return c.def.Template, true
	}

	loc := c.structure.FindStringSubmatchIndex(input)
	if loc == nil {
		return "", false
	}
	var groups []string
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			continue
		}
		groups = append(groups, input[loc[i]:loc[i+1]])
	}
	if len(loc) == 2 {
		groups = []string{input[loc[0]:loc[1]]}
	}
	for i, g := range groups {
		g = strings.TrimSpace(g)
		if c.def.Escape {
			g = strings.ReplaceAll(g, `"`, `\"`)
		}
		groups[i] = g
	}

	ok := true
	out := placeholder.ReplaceAllStringFunc(c.def.Template, func(p string) string {
		n, _ := strconv.Atoi(placeholder.FindStringSubmatch(p)[1])
		if n >= len(groups) {
			ok = false
			return p
		}
		return groups[n]
	})
	return out, ok
}

// Alias manages the stored aliases and registers each of them as a command.
type Alias struct {
	registry   *commands.Registry
	db         *perchbase.DB
	dispatcher Redispatcher

	mu   sync.Mutex
	defs map[string]Definition
}

// NewAlias reads the stored aliases and registers them. One that fails to register is
// logged and skipped.
func NewAlias(r *commands.Registry, db *perchbase.DB, d Redispatcher) (*Alias, error) {
	a := &Alias{registry: r, db: db, dispatcher: d, defs: map[string]Definition{}}
	if db != nil {
		if err := db.GetJSON(aliasesKey, &a.defs); err != nil && !errors.Is(err, perchbase.ErrNotFound) {
			return nil, fmt.Errorf("loading aliases: %w", err)
		}
	}

	for name, def := range a.defs {
		if r.Loaded("alias:" + name) {
			continue
		}
		if err := a.register(def); err != nil {
			logger.Warn("Skipping stored alias", "alias", name, "error", err)
		}
	}
	return a, nil
}

func (a *Alias) Info() commands.Info {
	return commands.Info{
		Name:    "alias",
		Help:    "Creates an alias command for another command.",
		Level:   access.Admin,
		Serious: true,
		Arguments: []commands.Argument{
			{Name: "-create", Help: "Creates an alias with the given name."},
			{Name: "-structure", Help: "A regular expression the alias input has to match. Its groups fill {0}, {1}, ..."},
			{Name: "-escape", Help: "Escapes double quotes in the groups before they are inserted."},
			{Name: "-remove", Help: "Removes the alias with the given name."},
			{Name: "-description", Help: "Sets the description for an alias."},
			{Name: "-level", Help: "Sets the access level for an alias.", Values: "NORMAL, VOICE, OPERATOR, ADMIN, ROOT"},
			{Name: "-example", Help: "Sets the example for an alias."},
			{Name: "-list", Help: "Lists every alias."},
		},
		Example: `alias -create:roll30 -structure:"^[0-9]+$" !roll {0}d30`,
	}
}

func (a *Alias) Run(s *state.State) error {
	switch {
	case s.HasFlag("list"):
		a.list(s)
		return nil
	case s.HasFlag("remove"):
		return a.remove(s, strings.ToLower(s.ConsumeFlag("remove")))
	case s.HasFlag("create"):
		return a.create(s, strings.ToLower(s.ConsumeFlag("create")))
	case s.HasFlag("description"):
		name := strings.ToLower(s.ConsumeFlag("description"))
		return a.edit(s, name, "description", func(d *Definition) error {
			d.Description = strings.TrimSpace(s.Message())
			return nil
		})
	case s.HasFlag("level"):
		name := strings.ToLower(s.ConsumeFlag("level"))
		return a.edit(s, name, "access level", func(d *Definition) error {
			level, err := access.Parse(s.Message())
			if err != nil {
				return errors.New("please enter a valid access level")
			}
			if !access.Satisfies(level, s.Level()) {
				return fmt.Errorf("you can't hand out %s, you are %s", level, s.Level())
			}
			d.Level = level
			return nil
		})
	case s.HasFlag("example"):
		name := strings.ToLower(s.ConsumeFlag("example"))
		return a.edit(s, name, "example", func(d *Definition) error {
			d.Example = strings.TrimSpace(d.Name + " " + strings.TrimSpace(s.Message()))
			return nil
		})
	}
	return errors.New("use -create, -remove, -description, -level, -example or -list")
}

func (a *Alias) list(s *state.State) {
	a.mu.Lock()
	names := make([]string, 0, len(a.defs))
	for name := range a.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		d := a.defs[name]
		lines = append(lines, fmt.Sprintf("[b]%s%s[/b] → %s (%s) [%s]", s.Prefix, d.Name, d.Template, d.Level, d.Fingerprint()))
	}
	a.mu.Unlock()

	if len(lines) == 0 {
		s.Send("There are no aliases yet.")
		return
	}
	s.SendPrivate(strings.Join(lines, "\n"))
}

func (a *Alias) create(s *state.State, name string) error {
	if name == "" || strings.ContainsAny(name, " :") {
		return errors.New("an alias needs a name without spaces or colons")
	}
	structure := s.ConsumeFlag("structure")
	_, escape := s.ConsumeFlagOK("escape")
	template := strings.TrimSpace(s.Message())
	if template == "" {
		return errors.New("what should the alias run?")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.defs[name]; ok {
		s.Send("This alias does already exist!")
		return nil
	}

	def := Definition{
		Name:      name,
		Template:  template,
		Structure: structure,
		Escape:    escape,
		Level:     access.Normal,
		Example:   name,
	}
	if err := a.register(def); err != nil {
		return err
	}
	a.defs[name] = def
	if err := a.saveLocked(); err != nil {
		delete(a.defs, name)
		a.unregister(def)
		return err
	}

	s.Logger().Info("Alias created", "alias", name, "template", template, "fingerprint", def.Fingerprint())
	s.Send(fmt.Sprintf("Aliased \"%s\" to \"%s%s\"", template, s.Prefix, name))
	return nil
}

func (a *Alias) remove(s *state.State, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	def, ok := a.defs[name]
	if !ok {
		s.Send(fmt.Sprintf("The alias \"%s\" does not exist!", name))
		return nil
	}
	if !access.Satisfies(def.Level, s.Level()) {
		s.Send(fmt.Sprintf("You don't have the permission to remove this alias! Only %s can remove this alias! You are %s.", def.Level, s.Level()))
		return nil
	}

	delete(a.defs, name)
	if err := a.saveLocked(); err != nil {
		a.defs[name] = def
		return err
	}
	a.unregister(def)
	s.Send(fmt.Sprintf("Removed the alias \"%s\"", name))
	return nil
}

func (a *Alias) edit(s *state.State, name, what string, fn func(*Definition) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	def, ok := a.defs[name]
	if !ok {
		s.Send("This alias doesn't exist! You can add it using the -create attribute.")
		return nil
	}
	if !access.Satisfies(def.Level, s.Level()) {
		s.Send(fmt.Sprintf("You don't have the permission to edit this alias! Only %s can edit this alias! You are %s.", def.Level, s.Level()))
		return nil
	}

	updated := def
	if err := fn(&updated); err != nil {
		return err
	}
	a.unregister(def)
	if err := a.register(updated); err != nil {
		if rerr := a.register(def); rerr != nil {
			logger.Warn("Error restoring alias", "alias", def.Name, "error", rerr)
		}
		return err
	}
	a.defs[name] = updated
	if err := a.saveLocked(); err != nil {
		return err
	}
	s.Send(fmt.Sprintf("Updated the %s for \"%s%s\"", what, s.Prefix, name))
	return nil
}

// unregister drops the alias command. It may already be gone if the module was unloaded by hand.
func (a *Alias) unregister(def Definition) {
	if _, err := a.registry.Unregister(def.module()); err != nil {
		logger.Warn("Error unregistering alias", "alias", def.Name, "error", err)
	}
}

// Lookup returns the stored alias called name.
func (a *Alias) Lookup(name string) (Definition, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.defs[strings.ToLower(name)]
	return d, ok
}

func (a *Alias) register(def Definition) error {
	cmd, err := newAliasCommand(def, a.dispatcher)
	if err != nil {
		return err
	}
	return a.registry.Register(cmd)
}

func (a *Alias) saveLocked() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.PutJSON(aliasesKey, a.defs); err != nil {
		return fmt.Errorf("saving aliases: %w", err)
	}
	return nil
}

func (d Definition) module() string {
	return "alias:" + d.Name
}
