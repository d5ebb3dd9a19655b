package standard

import (
	"context"
	"errors"
	rtmetrics "runtime/metrics"
	"strings"
	"time"

	"perchbot/helpers"
	"perchbot/irc/commands"
	"perchbot/irc/state"

	"github.com/Shopify/go-lua"
)

const (
	luaOutputLimit = 4096
	// luaStringLimit caps any single string a snippet may build.
	luaStringLimit = luaOutputLimit * 16
	// luaHeapLimit caps heap growth while a snippet runs, checked every luaHeapEvery instructions.
	luaHeapLimit = 256 << 20
	luaHeapEvery = 1000
)

var (
	errLuaOutput = errors.New("output limit reached")
	errLuaMemory = errors.New("memory limit reached")
)

// Lua runs snippets in an interpreter with only the base, string, table and math libraries.
type Lua struct{}

func (Lua) Info() commands.Info {
	return commands.Info{
		Name:    "lua",
		Help:    "Runs a Lua snippet and prints the result.",
		Timeout: 10 * time.Second,
		Arguments: []commands.Argument{
			{Name: "code", Help: "The Lua code to run. Returned values are printed."},
		},
		Example: "lua return ('ab'):rep(3)",
	}
}

func (Lua) Run(s *state.State) error {
	if s.IsEmptyMessage() {
		return errors.New("give me some code to run")
	}
	out, err := runLua(s.Ctx, s.Message())
	if err != nil {
		return err
	}
	if out == "" {
		out = "(no output)"
	}
	s.Send(helpers.Truncate(strings.Join(strings.Fields(out), " "), 400))
	return nil
}

// runLua executes code until it finishes or ctx ends.
func runLua(ctx context.Context, code string) (string, error) {
	l := lua.NewState()
	for _, lib := range []struct {
		name string
		open lua.Function
	}{
		{"_G", lua.BaseOpen},
		{"string", lua.StringOpen},
		{"table", lua.TableOpen},
		{"math", lua.MathOpen},
	} {
		lua.Require(l, lib.name, lib.open, true)
		l.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		l.PushNil()
		l.SetGlobal(name)
	}
	for _, f := range []struct {
		lib, name string
		fn        lua.Function
	}{
		{"string", "rep", luaRep},
		{"table", "concat", luaConcat},
	} {
		l.Global(f.lib)
		l.PushGoFunction(f.fn)
		l.SetField(-2, f.name)
		l.Pop(1)
	}

	var out strings.Builder
	write := func(l *lua.State, from int) {
		var parts []string
		for i := from; i <= l.Top(); i++ {
			text, _ := lua.ToStringMeta(l, i)
			l.Pop(1)
			parts = append(parts, text)
		}
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(strings.Join(parts, "\t"))
		if out.Len() > luaOutputLimit {
			lua.Errorf(l, errLuaOutput.Error())
		}
	}
	l.Register("print", func(l *lua.State) int {
		write(l, 1)
		return 0
	})

	// Concatenation happens inside the VM, so every instruction checks the
	// strings held in registers before the next one can double them.
	heapStart, steps := heapBytes(), 0
	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		if ctx.Err() != nil {
			lua.Errorf(l, "execution stopped: %s", context.Cause(ctx).Error())
		}
		for i := 1; i <= l.Top(); i++ {
			if l.TypeOf(i) == lua.TypeString && l.RawLength(i) > luaStringLimit {
				lua.Errorf(l, errLuaMemory.Error())
			}
		}
		if steps++; steps%luaHeapEvery == 0 && heapBytes() > heapStart+luaHeapLimit {
			lua.Errorf(l, errLuaMemory.Error())
		}
	}, lua.MaskCount, 1)

	if err := lua.LoadString(l, code); err != nil {
		return "", errors.New(strings.TrimSpace(err.Error()))
	}
	if err := l.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		if ctx.Err() != nil {
			return out.String(), context.Cause(ctx)
		}
		return out.String(), err
	}
	if l.Top() > 0 {
		write(l, 1)
	}
	return out.String(), nil
}

func heapBytes() uint64 {
	sample := []rtmetrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
	rtmetrics.Read(sample)
	if sample[0].Value.Kind() != rtmetrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}

// luaRep is string.rep with the result size checked before allocating.
func luaRep(l *lua.State) int {
	s, n, sep := lua.CheckString(l, 1), lua.CheckInteger(l, 2), lua.OptString(l, 3, "")
	if n <= 0 {
		l.PushString("")
		return 1
	}
	if n > luaStringLimit || n*(len(s)+len(sep)) > luaStringLimit {
		lua.Errorf(l, errLuaMemory.Error())
	}
	l.PushString(strings.Repeat(s+sep, n-1) + s)
	return 1
}

// luaConcat is table.concat with the same size check as luaRep.
func luaConcat(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)
	sep := lua.OptString(l, 2, "")
	first := lua.OptInteger(l, 3, 1)
	last := 0
	if l.IsNoneOrNil(4) {
		last = lua.LengthEx(l, 1)
	} else {
		last = lua.CheckInteger(l, 4)
	}

	var b strings.Builder
	for i := first; i <= last; i++ {
		l.RawGetInt(1, i)
		s, ok := l.ToString(-1)
		if !ok {
			lua.Errorf(l, "invalid value (%s) at index %d in table for 'concat'", lua.TypeNameOf(l, -1), i)
		}
		l.Pop(1)
		if i > first {
			s = sep + s
		}
		if b.Len()+len(s) > luaStringLimit {
			lua.Errorf(l, errLuaMemory.Error())
		}
		b.WriteString(s)
	}
	l.PushString(b.String())
	return 1
}
