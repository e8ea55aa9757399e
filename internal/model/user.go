package model

// User is an account. The plaintext Token only ever lives in memory right
// after it was minted so it can be handed to the mail collaborator; the
// store sees nothing but its encrypted form and expiry.
type User struct {
	Rec

	Name  Name
	Email Email

	// Token is the freshly minted one-time token. Mem-only, never encoded.
	Token []byte
	// EncryptedToken is the persisted digest of the token.
	EncryptedToken []byte
	// TokenExpires is the millisecond instant the token stops working.
	TokenExpires int64
	// Authenticated counts completed token confirmations.
	Authenticated int32

	// Notifications maps happening kinds to delivery preferences. Kinds
	// missing from the map use DefaultDelivery.
	Notifications map[Notification]Delivery

	// Sites are the names of dashboards the user owns.
	Sites Names

	LastActive int64

	// activity statistics
	XP        int32
	Absolved  int32
	Resolved  int32
	Dissolved int32

	// abuse-protection counters, rolled over on UTC day boundaries
	ReportedToday    int32
	MillisReported   int64
	EmphasizedToday  int32
	MillisEmphasized int64
}

func (u *User) UniqueID() ID { return UserID(u.Name) }

// IsAnonymous reports whether the user never registered a proper name.
func (u *User) IsAnonymous() bool { return u.Name.IsEmail() }

// IsAuthenticated reports whether the user completed at least one token
// confirmation under an external name.
func (u *User) IsAuthenticated() bool { return u.Authenticated > 0 && u.Name.IsExternal() }

// Delivery returns the effective delivery preference for a happening kind.
func (u *User) Delivery(n Notification) Delivery {
	if d, ok := u.Notifications[n]; ok {
		return d
	}
	return DefaultDelivery(n)
}

// EmphasisDelayMillis is the XP-scaled cool-down between two emphasize
// actions: one hour shrinking with experience, never below one minute.
func (u *User) EmphasisDelayMillis() int64 {
	d := int64(3600000.0 / (1.0 + float64(u.XP)/50.0))
	if d < 60000 {
		return 60000
	}
	return d
}

// EmphasisPerDay is the rolling-day emphasize cap: 10 + xp/5.
func (u *User) EmphasisPerDay() int32 { return 10 + u.XP/5 }

// CanEmphasize reports whether an emphasize action at now passes the
// cool-down and the rolling-day cap.
func (u *User) CanEmphasize(now int64) bool {
	return u.IsAuthenticated() &&
		now-u.MillisEmphasized > u.EmphasisDelayMillis() &&
		(u.EmphasizedToday < u.EmphasisPerDay() || !SameDay(now, u.MillisEmphasized))
}

// Emphasized books an emphasize action at now, rolling the daily counter
// over on a new UTC day.
func (u *User) Emphasized(now int64) {
	if SameDay(now, u.MillisEmphasized) {
		u.EmphasizedToday++
	} else {
		u.EmphasizedToday = 1
	}
	u.MillisEmphasized = now
}

// ReportsPerDay is the rolling-day report cap: 10 + xp.
func (u *User) ReportsPerDay() int32 { return 10 + u.XP }

// CanReport reports whether a report action at now passes the rolling-day
// cap.
func (u *User) CanReport(now int64) bool {
	return u.ReportedToday < u.ReportsPerDay() || !SameDay(now, u.MillisReported)
}

// Reported books a report action at now, rolling the daily counter over on
// a new UTC day.
func (u *User) Reported(now int64) {
	if SameDay(now, u.MillisReported) {
		u.ReportedToday++
	} else {
		u.ReportedToday = 1
	}
	u.MillisReported = now
}

// Clone returns an independent snapshot. The mem-only token is not carried
// over; it belongs to the moment it was minted.
func (u *User) Clone() *User {
	c := *u
	c.Token = nil
	if u.EncryptedToken != nil {
		c.EncryptedToken = make([]byte, len(u.EncryptedToken))
		copy(c.EncryptedToken, u.EncryptedToken)
	}
	if u.Notifications != nil {
		c.Notifications = make(map[Notification]Delivery, len(u.Notifications))
		for k, v := range u.Notifications {
			c.Notifications[k] = v
		}
	}
	c.Sites = u.Sites.Clone()
	return &c
}
