package dispatch

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"perchbot/irc/message"
	"perchbot/perchbase"
)

const floodWindow = 3 * time.Second

// floodGate counts commands per hostmask in a short window and bans hostmasks that go over
// the threshold.
type floodGate struct {
	db        *perchbase.DB
	threshold int
	ban       time.Duration
	log       *slog.Logger
	gateway   *message.Gateway

	mu sync.Mutex
}

// check counts msg and reports whether it should be dropped.
func (f *floodGate) check(msg *message.Message) bool {
	banKey := "flood:ban:" + msg.Hostmask
	countKey := "flood:count:" + msg.Hostmask

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.db.Has(banKey) {
		return true
	}

	count := 1
	if f.db.Has(countKey) {
		n, err := f.db.GetInt(countKey)
		if err == nil {
			count = n + 1
		}
	}
	if err := f.db.PutExpire(countKey, []byte(strconv.Itoa(count)), floodWindow); err != nil {
		f.log.Error("Failed to update flood count", "error", err)
		return false
	}

	if count <= f.threshold {
		return false
	}

	ban := f.ban
	if ban <= 0 {
		ban = time.Minute
	}
	if err := f.db.PutExpire(banKey, []byte("1"), ban); err != nil {
		f.log.Error("Failed to set flood ban", "error", err)
	}
	_ = f.db.Delete(countKey)
	f.log.Warn("Flood detected, ignoring hostmask", "hostmask", msg.Hostmask, "count", count, "ban", ban)
	if f.gateway != nil {
		f.gateway.Send(fmt.Sprintf("Birds fly above floods! Ignoring your commands for %s.", ban), msg.User, msg.Source, false)
	}
	return true
}
