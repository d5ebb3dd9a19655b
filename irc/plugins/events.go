package plugins

type (
	Join struct {
		Nick     string
		Hostmask string
		Channel  string
	}

	Part struct {
		Nick     string
		Hostmask string
		Channel  string
		Reason   string
	}

	Kick struct {
		By      string
		Channel string
		Nick    string
		Reason  string
	}

	Nick struct {
		Old string
		New string
	}

	Quit struct {
		Nick     string
		Hostmask string
		Reason   string
	}

	Mode struct {
		By     string
		Target string
		Modes  string
		Args   []string
	}

	NetworkError struct {
		Text string
	}

	Whois struct {
		Nick  string
		Found bool
	}
)
