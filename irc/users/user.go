package users

import (
	"strings"
	"time"

	"perchbot/helpers"
	"perchbot/perchbase"
)

// Lookup finds the admin entry for a services account, ignoring case.
func (a Admins) Lookup(account string) (Admin, bool) {
	if account == "" {
		return Admin{}, false
	}
	for _, admin := range a {
		if strings.EqualFold(admin.Name, account) {
			return admin, true
		}
	}
	return Admin{}, false
}

func sightingKey(nick string) string {
	return "seen:" + strings.ToLower(nick)
}

func channelSightingKey(nick, channel string) string {
	return "seen:" + strings.ToLower(channel) + ":" + strings.ToLower(nick)
}

// Touch records that nick said text in channel just now, both as their latest sighting and
// as their latest in that channel.
func Touch(db *perchbase.DB, nick, channel, text string) error {
	s := Sighting{
		Nick:    nick,
		Channel: channel,
		Text:    text,
		Time:    time.Now().Unix(),
	}
	if err := db.PutJSON(sightingKey(nick), s); err != nil {
		return err
	}
	return db.PutJSON(channelSightingKey(nick, channel), s)
}

// LastSeen returns the latest sighting of nick.
func LastSeen(db *perchbase.DB, nick string) (Sighting, error) {
	var s Sighting
	err := db.GetJSON(sightingKey(nick), &s)
	return s, err
}

// LastSeenIn returns the latest sighting of nick in channel.
func LastSeenIn(db *perchbase.DB, nick, channel string) (Sighting, error) {
	var s Sighting
	err := db.GetJSON(channelSightingKey(nick, channel), &s)
	return s, err
}

// Ago renders how long ago the sighting happened.
func (s Sighting) Ago() string {
	return helpers.UnixTimeToHumanReadable(s.Time)
}

func (s Sighting) When() time.Time {
	return time.Unix(s.Time, 0)
}
