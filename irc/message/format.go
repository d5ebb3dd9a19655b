package message

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// IRC formatting control characters.
const (
	Bold      = "\x02"
	Color     = "\x03"
	Italic    = "\x1d"
	Strike    = "\x1e"
	Underline = "\x1f"
	Reverse   = "\x16"
	Reset     = "\x0f"
)

// DefaultLineBudget is the largest payload sent in a single PRIVMSG.
const DefaultLineBudget = 450

var colorCodes = map[string]int{
	"white":      0,
	"black":      1,
	"darkblue":   2,
	"darkgreen":  3,
	"green":      3,
	"red":        4,
	"darkred":    5,
	"darkviolet": 6,
	"orange":     7,
	"yellow":     8,
	"lightgreen": 9,
	"cyan":       10,
	"lightcyan":  11,
	"blue":       12,
	"violet":     13,
	"darkgray":   14,
	"lightgray":  15,
}

var (
	toggleTag = regexp.MustCompile(`(?i)\[/?([biusr])\]`)
	colorTag  = regexp.MustCompile(`(?i)\[color=([a-z0-9]+)(?:,([a-z0-9]+))?\]`)
	colorEnd  = regexp.MustCompile(`(?i)\[/color\]`)

	toggleCodes = map[string]string{
		"b": Bold,
		"i": Italic,
		"u": Underline,
		"s": Strike,
		"r": Reverse,
	}
)

// Format turns [b]bold[/b] style markup into IRC control codes. Supported tags are
// b, i, u, s (strike), r (reverse) and [color=Fg] or [color=Fg,Bg] closed by [/color].
func Format(text string) string {
	text = toggleTag.ReplaceAllStringFunc(text, func(tag string) string {
		return toggleCodes[strings.ToLower(toggleTag.FindStringSubmatch(tag)[1])]
	})
	text = colorTag.ReplaceAllStringFunc(text, func(tag string) string {
		groups := colorTag.FindStringSubmatch(tag)
		out := Color + colorNumber(groups[1])
		if groups[2] != "" {
			out += "," + colorNumber(groups[2])
		}
		return out
	})
	return colorEnd.ReplaceAllString(text, Color)
}

func colorNumber(name string) string {
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 99 {
		return twoDigits(n)
	}
	// unknown names fall back to white
	return twoDigits(colorCodes[strings.ToLower(name)])
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// markup is the formatting that is switched on at some point in a line.
type markup struct {
	bold, italic, underline, strike, reverse bool
	fg, bg                                   string
}

func (m markup) active() bool {
	return m.bold || m.italic || m.underline || m.strike || m.reverse || m.fg != ""
}

// open is the control sequence that re-establishes m on a fresh line.
func (m markup) open() string {
	var b strings.Builder
	if m.bold {
		b.WriteString(Bold)
	}
	if m.italic {
		b.WriteString(Italic)
	}
	if m.underline {
		b.WriteString(Underline)
	}
	if m.strike {
		b.WriteString(Strike)
	}
	if m.reverse {
		b.WriteString(Reverse)
	}
	if m.fg != "" {
		b.WriteString(Color + padColor(m.fg))
		if m.bg != "" {
			b.WriteString("," + padColor(m.bg))
		} else {
			// a line continuing with ",N" must not read as a background
			b.WriteString(Bold + Bold)
		}
	}
	return b.String()
}

func padColor(code string) string {
	if len(code) == 1 {
		return "0" + code
	}
	return code
}

// closing is what has to be appended to a line that ends in state m.
func (m markup) closing() string {
	if m.active() {
		return Reset
	}
	return ""
}

// apply walks s and returns the state after it.
func (m markup) apply(s string) markup {
	for i := 0; i < len(s); {
		atom := nextAtom(s, i)
		switch s[i] {
		case Bold[0]:
			m.bold = !m.bold
		case Italic[0]:
			m.italic = !m.italic
		case Underline[0]:
			m.underline = !m.underline
		case Strike[0]:
			m.strike = !m.strike
		case Reverse[0]:
			m.reverse = !m.reverse
		case Reset[0]:
			m = markup{}
		case Color[0]:
			m.fg, m.bg = parseColor(s[i+1 : i+atom])
		}
		i += atom
	}
	return m
}

// nextAtom returns the byte length of the indivisible unit starting at i: a whole color
// sequence, a single control character or one rune.
func nextAtom(s string, i int) int {
	if s[i] == Color[0] {
		j := i + 1
		j += digits(s, j)
		if j > i+1 && j+1 < len(s) && s[j] == ',' && isDigit(s[j+1]) {
			j++
			j += digits(s, j)
		}
		return j - i
	}
	if s[i] < utf8.RuneSelf {
		return 1
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return size
}

func digits(s string, i int) int {
	n := 0
	for n < 2 && i+n < len(s) && isDigit(s[i+n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func parseColor(seq string) (fg, bg string) {
	fg, bg, _ = strings.Cut(seq, ",")
	return fg, bg
}

// Split breaks formatted text into lines of at most budget bytes. Lines are broken on
// newlines and spaces where possible and inside a word only when the word alone is too
// long. Every returned line carries its own formatting: markup active at the start of a
// line is reopened and anything still active at its end is reset.
func Split(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultLineBudget
	}

	var (
		lines []string
		state markup
	)
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimRight(paragraph, "\r")
		var out []string
		out, state = splitParagraph(paragraph, budget, state)
		lines = append(lines, out...)
	}
	return lines
}

func splitParagraph(text string, budget int, state markup) ([]string, markup) {
	var (
		lines []string
		line  strings.Builder
		empty = true
		cur   = state
	)

	start := func() {
		line.Reset()
		line.WriteString(cur.open())
		empty = true
	}
	flush := func() {
		if !empty {
			lines = append(lines, line.String()+cur.closing())
		}
		start()
	}
	start()

	for _, word := range strings.Split(text, " ") {
		if word == "" && empty {
			continue
		}
		sep := ""
		if !empty {
			sep = " "
		}
		next := cur.apply(word)
		if line.Len()+len(sep)+len(word)+len(next.closing()) <= budget {
			line.WriteString(sep + word)
			cur = next
			empty = false
			continue
		}

		if !empty {
			flush()
			next = cur.apply(word)
			if line.Len()+len(word)+len(next.closing()) <= budget {
				line.WriteString(word)
				cur = next
				empty = false
				continue
			}
		}

		// the word does not fit on a line of its own
		for i := 0; i < len(word); {
			atom := nextAtom(word, i)
			piece := word[i : i+atom]
			after := cur.apply(piece)
			if !empty && line.Len()+len(piece)+len(after.closing()) > budget {
				flush()
				after = cur.apply(piece)
			}
			line.WriteString(piece)
			cur = after
			empty = false
			i += atom
		}
	}
	flush()

	return lines, cur
}
