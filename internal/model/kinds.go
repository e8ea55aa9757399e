package model

// Enumerated domain values carry explicit wire tags that are fixed forever
// once assigned. New values are appended with new tags; tags are never
// reused or reordered, so historical records keep their meaning.

// Motive is why a task exists.
type Motive uint8

const (
	// Defect: something is broken and must be made to work as described.
	Defect Motive = 1
	// Intention: something particular should happen, without a plan.
	Intention Motive = 2
	// Proposal: a specific change of how things should be.
	Proposal Motive = 3
	// Release: a set of changes should be published somewhere.
	Release Motive = 4
)

func (m Motive) String() string {
	switch m {
	case Defect:
		return "defect"
	case Intention:
		return "intention"
	case Proposal:
		return "proposal"
	case Release:
		return "release"
	}
	return "motive?"
}

// MotiveFromTag maps a stored wire tag back to its Motive.
func MotiveFromTag(tag uint8) (Motive, bool) {
	m := Motive(tag)
	return m, m >= Defect && m <= Release
}

// Purpose is what kind of work concludes a task.
type Purpose uint8

const (
	// Clarification: confirming defects, localizing areas, exploring ideas.
	Clarification Purpose = 1
	// Modification: something actually changes.
	Modification Purpose = 2
	// Verification: something is checked.
	Verification Purpose = 3
	// Publication: a change makes it somewhere else.
	Publication Purpose = 4
)

func (p Purpose) String() string {
	switch p {
	case Clarification:
		return "clarification"
	case Modification:
		return "modification"
	case Verification:
		return "verification"
	case Publication:
		return "publication"
	}
	return "purpose?"
}

// PurposeFromTag maps a stored wire tag back to its Purpose.
func PurposeFromTag(tag uint8) (Purpose, bool) {
	p := Purpose(tag)
	return p, p >= Clarification && p <= Publication
}

// Status is a task's resolution state. Unsolved is the only non-terminal
// state: once a task leaves it the status never changes again.
type Status uint8

const (
	Unsolved  Status = 1
	Absolved  Status = 2
	Resolved  Status = 3
	Dissolved Status = 4
)

func (s Status) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case Absolved:
		return "absolved"
	case Resolved:
		return "resolved"
	case Dissolved:
		return "dissolved"
	}
	return "status?"
}

// StatusFromTag maps a stored wire tag back to its Status.
func StatusFromTag(tag uint8) (Status, bool) {
	s := Status(tag)
	return s, s >= Unsolved && s <= Dissolved
}

// Matter is what a poll decides about its area.
type Matter uint8

const (
	// Inclusion: open the area so non-maintainers may assign tasks to it.
	Inclusion Matter = 1
	// Exclusion: make the area exclusive to its maintainers.
	Exclusion Matter = 2
	// Resignation: remove the affected user from the maintainer set.
	Resignation Matter = 3
	// Participation: add the affected user to the maintainer set.
	Participation Matter = 4
)

func (m Matter) String() string {
	switch m {
	case Inclusion:
		return "inclusion"
	case Exclusion:
		return "exclusion"
	case Resignation:
		return "resignation"
	case Participation:
		return "participation"
	}
	return "matter?"
}

// MatterFromTag maps a stored wire tag back to its Matter.
func MatterFromTag(tag uint8) (Matter, bool) {
	m := Matter(tag)
	return m, m >= Inclusion && m <= Participation
}

// Delivery is how often notifications of one kind reach a user.
type Delivery uint8

const (
	Instantly Delivery = 1
	Hourly    Delivery = 2
	Daily     Delivery = 3
	Never     Delivery = 4
)

func (d Delivery) String() string {
	switch d {
	case Instantly:
		return "instantly"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	case Never:
		return "never"
	}
	return "delivery?"
}

// DeliveryFromTag maps a stored wire tag back to its Delivery.
func DeliveryFromTag(tag uint8) (Delivery, bool) {
	d := Delivery(tag)
	return d, d >= Instantly && d <= Never
}

// Notification is a kind of happening a user can tune delivery for.
type Notification uint8

const (
	NotifyConstituted Notification = 1
	NotifyComparted   Notification = 2
	NotifyTagged      Notification = 3
	NotifyPolled      Notification = 4
	NotifyVoted       Notification = 5
	NotifyReported    Notification = 6
	NotifyForked      Notification = 7
	NotifyMoved       Notification = 8
	NotifySolved      Notification = 9
)

// notificationCount is the number of assigned Notification tags.
const notificationCount = 9

func (n Notification) String() string {
	switch n {
	case NotifyConstituted:
		return "constituted"
	case NotifyComparted:
		return "comparted"
	case NotifyTagged:
		return "tagged"
	case NotifyPolled:
		return "polled"
	case NotifyVoted:
		return "voted"
	case NotifyReported:
		return "reported"
	case NotifyForked:
		return "forked"
	case NotifyMoved:
		return "moved"
	case NotifySolved:
		return "solved"
	}
	return "notification?"
}

// NotificationFromTag maps a stored wire tag back to its Notification.
func NotificationFromTag(tag uint8) (Notification, bool) {
	n := Notification(tag)
	return n, n >= NotifyConstituted && n <= NotifySolved
}

// Notifications returns every assigned Notification in tag order.
func Notifications() []Notification {
	res := make([]Notification, 0, notificationCount)
	for t := NotifyConstituted; t <= NotifySolved; t++ {
		res = append(res, t)
	}
	return res
}

// DefaultDelivery is the delivery a fresh account gets per notification
// kind. Frequent task-level noise defaults to hourly digests, structural
// happenings to daily ones.
func DefaultDelivery(n Notification) Delivery {
	switch n {
	case NotifyPolled, NotifyVoted, NotifyReported, NotifySolved:
		return Hourly
	default:
		return Daily
	}
}
