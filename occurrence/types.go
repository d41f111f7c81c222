package occurrence

import (
	"time"

	"github.com/samber/mo"
)

// optionalTime is an instant that may be absent; absent end dates mean the
// range is unbounded.
type optionalTime = mo.Option[time.Time]

func unbounded() optionalTime { return mo.None[time.Time]() }
