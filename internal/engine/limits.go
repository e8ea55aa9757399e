package engine

import "github.com/trackline/trackline/internal/model"

// Limits is the process-wide abuse protection shared by all transactions.
// Per-user rate limits (reports, emphasis) live on the User entity itself;
// what remains here are the actions that cannot be pinned on an existing
// account: registering new users and extending the structure with new
// products, areas, versions and sites.
//
// Counters roll over on UTC day boundaries like the per-user ones. Booking
// happens inside the single-writer transaction, so no locking is needed.
// A booking survives an aborted transaction; the limiter errs on the
// strict side.
type Limits struct {
	// MaxRegistrationsPerDay caps new accounts per UTC day.
	MaxRegistrationsPerDay int32
	// MaxExtensionsPerDay caps new products, areas, versions and sites
	// per UTC day.
	MaxExtensionsPerDay int32
	// TokenTTLMillis is how long a freshly minted sign-in token works.
	TokenTTLMillis int64

	registeredToday  int32
	millisRegistered int64
	extendedToday    int32
	millisExtended   int64
}

// Default limit values for a single small installation.
const (
	defaultMaxRegistrationsPerDay = 100
	defaultMaxExtensionsPerDay    = 50
	defaultTokenTTLMillis         = 15 * 60 * 1000
)

// NewLimits returns a limiter with default caps.
func NewLimits() *Limits {
	return &Limits{
		MaxRegistrationsPerDay: defaultMaxRegistrationsPerDay,
		MaxExtensionsPerDay:    defaultMaxExtensionsPerDay,
		TokenTTLMillis:         defaultTokenTTLMillis,
	}
}

// CanRegister reports whether another registration at now fits the day cap.
func (l *Limits) CanRegister(now int64) bool {
	return l.registeredToday < l.MaxRegistrationsPerDay || !model.SameDay(now, l.millisRegistered)
}

// Registered books a registration at now.
func (l *Limits) Registered(now int64) {
	if model.SameDay(now, l.millisRegistered) {
		l.registeredToday++
	} else {
		l.registeredToday = 1
	}
	l.millisRegistered = now
}

// CanExtend reports whether another structural extension at now fits the
// day cap.
func (l *Limits) CanExtend(now int64) bool {
	return l.extendedToday < l.MaxExtensionsPerDay || !model.SameDay(now, l.millisExtended)
}

// Extended books a structural extension at now.
func (l *Limits) Extended(now int64) {
	if model.SameDay(now, l.millisExtended) {
		l.extendedToday++
	} else {
		l.extendedToday = 1
	}
	l.millisExtended = now
}
