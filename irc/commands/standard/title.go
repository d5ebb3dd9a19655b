package standard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"perchbot/helpers"
	"perchbot/http/request"
	"perchbot/irc/commands"
	"perchbot/irc/state"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Title struct{}

func (Title) Info() commands.Info {
	return commands.Info{
		Name:    "title",
		Help:    "Fetches the title of a web page.",
		Serious: true,
		Timeout: 15 * time.Second,
		Arguments: []commands.Argument{
			{Name: "url", Help: "An http or https address."},
		},
		Example: "title https://go.dev",
	}
}

func (Title) Run(s *state.State) error {
	args := s.Args()
	if len(args) == 0 {
		return errors.New("which page?")
	}

	req := request.Request{Url: args[0], MaxBytes: 512 << 10}
	res, err := req.Fetch(s.Ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(res.ContentType, "html") {
		return fmt.Errorf("that is not a web page (%s)", res.ContentType)
	}

	title := pageTitle(bytes.NewReader(res.Body))
	if title == "" {
		s.Send("That page has no title.")
		return nil
	}
	s.Send("[b]Title:[/b] " + helpers.Truncate(title, 300))
	return nil
}

// pageTitle returns the whitespace-collapsed text of the first <title> element.
func pageTitle(r io.Reader) string {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if z.Token().DataAtom == atom.Title {
				inTitle = true
			}
		case html.EndTagToken:
			if inTitle && z.Token().DataAtom == atom.Title {
				return strings.Join(strings.Fields(b.String()), " ")
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}
