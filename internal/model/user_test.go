package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// aDay is one UTC day in milliseconds.
const aDay = 24 * 3600 * 1000

func authenticated(name string) *User {
	u := &User{Name: MustName(name), Authenticated: 1}
	u.Rev = 1
	return u
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(0, 1000))
	assert.True(t, SameDay(0, aDay-1))
	assert.False(t, SameDay(0, aDay))
	assert.False(t, SameDay(aDay-1, aDay))
}

func TestUser_IsAuthenticated(t *testing.T) {
	u := authenticated("dev")
	assert.True(t, u.IsAuthenticated())

	anon := &User{Name: MustName("jan@example.com"), Authenticated: 1}
	assert.True(t, anon.IsAnonymous())
	assert.False(t, anon.IsAuthenticated(), "email-named users never count as authenticated")

	fresh := &User{Name: MustName("dev")}
	assert.False(t, fresh.IsAuthenticated())
}

func TestUser_EmphasisDelayShrinksWithXP(t *testing.T) {
	u := authenticated("dev")
	assert.Equal(t, int64(3600000), u.EmphasisDelayMillis())

	u.XP = 50
	assert.Equal(t, int64(1800000), u.EmphasisDelayMillis())

	u.XP = 100000
	assert.Equal(t, int64(60000), u.EmphasisDelayMillis(), "delay never drops below one minute")
}

func TestUser_EmphasisPerDay(t *testing.T) {
	u := authenticated("dev")
	assert.Equal(t, int32(10), u.EmphasisPerDay())
	u.XP = 25
	assert.Equal(t, int32(15), u.EmphasisPerDay())
}

func TestUser_CanEmphasize_DailyCap(t *testing.T) {
	u := authenticated("dev")
	now := int64(aDay * 10)
	u.EmphasizedToday = 10
	u.MillisEmphasized = now - 2*3600000 // cool-down passed, cap reached

	assert.False(t, u.CanEmphasize(now))
	assert.True(t, u.CanEmphasize(now+aDay), "cap rolls over on a new UTC day")
}

func TestUser_CanEmphasize_CoolDown(t *testing.T) {
	u := authenticated("dev")
	now := int64(aDay * 10)
	u.MillisEmphasized = now - 1000

	assert.False(t, u.CanEmphasize(now), "one second after the last emphasize is too soon")
	assert.True(t, u.CanEmphasize(now+u.EmphasisDelayMillis()+1))
}

func TestUser_Emphasized_RollsOver(t *testing.T) {
	u := authenticated("dev")
	now := int64(aDay * 10)
	u.Emphasized(now)
	u.Emphasized(now + 3600000)
	assert.Equal(t, int32(2), u.EmphasizedToday)

	u.Emphasized(now + aDay)
	assert.Equal(t, int32(1), u.EmphasizedToday, "new day restarts the counter")
}

func TestUser_CanReport(t *testing.T) {
	u := authenticated("dev")
	now := int64(aDay * 10)
	u.ReportedToday = 10
	u.MillisReported = now - 1000

	assert.False(t, u.CanReport(now), "10 reports at xp 0 exhaust the day")
	assert.True(t, u.CanReport(now+aDay))

	u.XP = 5
	assert.True(t, u.CanReport(now), "xp raises the report cap")
}

func TestUser_CloneDropsToken(t *testing.T) {
	u := authenticated("dev")
	u.Token = []byte("plaintext")
	u.EncryptedToken = []byte("digest")
	u.Notifications = map[Notification]Delivery{NotifySolved: Instantly}
	u.Sites = NamesOf(MustName("board"))

	c := u.Clone()
	assert.Nil(t, c.Token, "plaintext token never survives a clone")
	assert.Equal(t, u.EncryptedToken, c.EncryptedToken)

	c.Notifications[NotifySolved] = Never
	c.Sites = c.Sites.Add(MustName("other"))
	assert.Equal(t, Instantly, u.Notifications[NotifySolved])
	assert.Equal(t, 1, u.Sites.Count())
}

func TestUser_DeliveryDefaults(t *testing.T) {
	u := authenticated("dev")
	assert.Equal(t, Hourly, u.Delivery(NotifySolved))
	assert.Equal(t, Daily, u.Delivery(NotifyConstituted))

	u.Notifications = map[Notification]Delivery{NotifySolved: Never}
	assert.Equal(t, Never, u.Delivery(NotifySolved))
	assert.Equal(t, Daily, u.Delivery(NotifyConstituted))
}
