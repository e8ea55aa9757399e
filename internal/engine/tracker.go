package engine

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackline/trackline/internal/model"
)

// Tracker is the pure rule engine: one method per business action. Methods
// take already-resolved entity snapshots, run every guard, and return fresh
// clones with the revision bumped exactly once. Inputs are never mutated.
// A method that legitimately does nothing returns its inputs unchanged;
// the transaction layer detects the unchanged revision and skips the write.
//
// Tracker holds no storage; resolution and persistence are the transaction
// layer's job. That keeps every rule testable against hand-built snapshots.
type Tracker struct {
	clock  Clock
	limits *Limits
}

// NewTracker builds a rule engine on the given clock and limiter.
func NewTracker(clock Clock, limits *Limits) *Tracker {
	return &Tracker{clock: clock, limits: limits}
}

// guards

func expectAuthenticated(u *model.User) error {
	if !u.IsAuthenticated() {
		return deny("user %s is not authenticated", u.Name.String())
	}
	return nil
}

func expectExternal(n model.Name) error {
	if !n.IsExternal() {
		return deny("name %s is reserved", n.String())
	}
	return nil
}

func expectMaintainer(a *model.Area, u *model.User) error {
	if !a.IsMaintainer(u.Name) {
		return deny("user %s does not maintain area %s:%s",
			u.Name.String(), a.Product.String(), a.Name.String())
	}
	return nil
}

func expectUnsolved(t *model.Task) error {
	if t.IsConcluded() {
		return deny("task %s #%d is concluded", t.Product.Name.String(), t.Serial)
	}
	return nil
}

func (t *Tracker) expectCanRegister(now int64) error {
	if !t.limits.CanRegister(now) {
		return deny("registration limit reached, try again tomorrow")
	}
	return nil
}

func (t *Tracker) expectCanExtend(now int64) error {
	if !t.limits.CanExtend(now) {
		return deny("extension limit reached, try again tomorrow")
	}
	return nil
}

// mintToken equips the user clone with a fresh one-time token. The
// plaintext lives only on the returned snapshot; the store sees the digest.
func (t *Tracker) mintToken(u *model.User, now int64) error {
	token := []byte(uuid.NewString())
	digest, err := bcrypt.GenerateFromPassword(token, bcrypt.DefaultCost)
	if err != nil {
		return deny("cannot mint token: %v", err)
	}
	u.Token = token
	u.EncryptedToken = digest
	u.TokenExpires = now + t.limits.TokenTTLMillis
	return nil
}

// users

// Register creates an account or re-mints the sign-in token of an existing
// one. existing is nil for first contact. The name must be a user-picked
// external one; email-shaped reporters enter through Anonymous instead.
func (t *Tracker) Register(existing *model.User, name model.Name, email model.Email) (*model.User, error) {
	now := t.clock()
	if err := expectExternal(name); err != nil {
		return nil, err
	}
	if existing != nil {
		if string(existing.Email) != string(email) {
			return nil, deny("name %s is already taken", name.String())
		}
		res := existing.Clone()
		if err := t.mintToken(res, now); err != nil {
			return nil, err
		}
		res.Rev++
		return res, nil
	}
	if err := t.expectCanRegister(now); err != nil {
		return nil, err
	}
	res := &model.User{
		Name:       name,
		Email:      email,
		LastActive: now,
	}
	if err := t.mintToken(res, now); err != nil {
		return nil, err
	}
	t.limits.Registered(now)
	res.Rev = 1
	return res, nil
}

// Anonymous is the onboarding path for email-named reporters: no account,
// no token, never authenticated. The snapshot is persisted together with
// the first report, so the per-user rate counters stick across reports.
func (t *Tracker) Anonymous(name model.Name) (*model.User, error) {
	if !name.IsEmail() {
		return nil, deny("name %s is not an email address", name.String())
	}
	return &model.User{Name: name, Email: model.Email(name.String())}, nil
}

// Confirm redeems the one-time token. A successful confirmation consumes
// the token and counts towards the authenticated state.
func (t *Tracker) Confirm(u *model.User, token []byte) (*model.User, error) {
	now := t.clock()
	if len(u.EncryptedToken) == 0 || now > u.TokenExpires {
		return nil, deny("token of user %s has expired", u.Name.String())
	}
	if bcrypt.CompareHashAndPassword(u.EncryptedToken, token) != nil {
		return nil, deny("token of user %s does not match", u.Name.String())
	}
	res := u.Clone()
	res.EncryptedToken = nil
	res.TokenExpires = 0
	res.Authenticated++
	res.LastActive = now
	res.Rev++
	return res, nil
}

// Authenticate re-mints a sign-in token for an existing account.
func (t *Tracker) Authenticate(u *model.User) (*model.User, error) {
	now := t.clock()
	res := u.Clone()
	if err := t.mintToken(res, now); err != nil {
		return nil, err
	}
	res.LastActive = now
	res.Rev++
	return res, nil
}

// Configure replaces the user's notification delivery preferences.
func (t *Tracker) Configure(u *model.User, prefs map[model.Notification]model.Delivery) (*model.User, error) {
	if err := expectAuthenticated(u); err != nil {
		return nil, err
	}
	res := u.Clone()
	if prefs == nil {
		res.Notifications = nil
	} else {
		res.Notifications = make(map[model.Notification]model.Delivery, len(prefs))
		for k, v := range prefs {
			res.Notifications[k] = v
		}
	}
	res.LastActive = t.clock()
	res.Rev++
	return res, nil
}

// sites

const maxSitesPerUser = 10

// Launch creates a dashboard owned by the user.
func (t *Tracker) Launch(owner *model.User, site model.Name, template model.Template) (*model.Site, *model.User, error) {
	now := t.clock()
	if err := expectAuthenticated(owner); err != nil {
		return nil, nil, err
	}
	if err := expectExternal(site); err != nil {
		return nil, nil, err
	}
	if owner.Sites.Contains(site) {
		return nil, nil, deny("user %s already owns site %s", owner.Name.String(), site.String())
	}
	if owner.Sites.Count() >= maxSitesPerUser {
		return nil, nil, deny("user %s cannot own more than %d sites", owner.Name.String(), maxSitesPerUser)
	}
	if err := t.expectCanExtend(now); err != nil {
		return nil, nil, err
	}
	s := &model.Site{
		Owner:    owner.Name,
		Name:     site,
		Template: template,
	}
	s.Rev = 1
	t.limits.Extended(now)
	res := owner.Clone()
	res.Sites = res.Sites.Add(site)
	res.LastActive = now
	res.Rev++
	return s, res, nil
}

// Restructure replaces a site's template. Only the owner may do that.
func (t *Tracker) Restructure(s *model.Site, owner *model.User, template model.Template) (*model.Site, error) {
	if err := expectAuthenticated(owner); err != nil {
		return nil, err
	}
	if !s.Owner.EqualTo(owner.Name) {
		return nil, deny("user %s does not own site %s", owner.Name.String(), s.Name.String())
	}
	res := s.Clone()
	res.Template = template
	res.Rev++
	return res, nil
}

// products

// Constitute creates a product together with its implicit children: the
// administrative origin area "*" maintained by the originator, the
// somewhere area "~" and the somewhen version "~".
func (t *Tracker) Constitute(product model.Name, originator *model.User) (*model.Product, error) {
	now := t.clock()
	if err := expectAuthenticated(originator); err != nil {
		return nil, err
	}
	if err := expectExternal(product); err != nil {
		return nil, err
	}
	if err := t.expectCanExtend(now); err != nil {
		return nil, err
	}
	origin := &model.Area{
		Product:     product,
		Name:        model.Origin,
		Maintainers: model.NamesOf(originator.Name),
		Exclusive:   true,
	}
	origin.Rev = 1
	somewhere := &model.Area{
		Product: product,
		Name:    model.Unknown,
	}
	somewhere.Rev = 1
	somewhen := &model.Version{
		Product: product,
		Name:    model.Unknown,
	}
	somewhen.Rev = 1
	p := &model.Product{
		Name:      product,
		Origin:    origin,
		Somewhere: somewhere,
		Somewhen:  somewhen,
	}
	p.Rev = 1
	t.limits.Extended(now)
	return p, nil
}

// areas

// Compart creates a top-level area in the product. Only origin maintainers
// structure a product.
func (t *Tracker) Compart(p *model.Product, area model.Name, actor *model.User) (*model.Area, error) {
	now := t.clock()
	if err := expectAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := expectMaintainer(p.Origin, actor); err != nil {
		return nil, err
	}
	if err := expectExternal(area); err != nil {
		return nil, err
	}
	if err := t.expectCanExtend(now); err != nil {
		return nil, err
	}
	a := &model.Area{
		Product:     p.Name,
		Name:        area,
		Maintainers: model.NamesOf(actor.Name),
	}
	a.Rev = 1
	t.limits.Extended(now)
	return a, nil
}

// CompartPartition splits an area off an existing basis. Subordinate
// partitions inherit the basis' maintainers and exclusivity; independent
// ones start with the actor alone.
func (t *Tracker) CompartPartition(basis *model.Area, partition model.Name, actor *model.User, subordinate bool) (*model.Area, error) {
	now := t.clock()
	if err := expectAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := expectMaintainer(basis, actor); err != nil {
		return nil, err
	}
	if err := expectExternal(partition); err != nil {
		return nil, err
	}
	if err := t.expectCanExtend(now); err != nil {
		return nil, err
	}
	a := &model.Area{
		Product: basis.Product,
		Name:    partition,
		Basis:   basis.Name,
	}
	if subordinate {
		a.Maintainers = basis.Maintainers.Clone().Add(actor.Name)
		a.Exclusive = basis.Exclusive
	} else {
		a.Maintainers = model.NamesOf(actor.Name)
	}
	a.Rev = 1
	t.limits.Extended(now)
	return a, nil
}

// Leave removes the user from the area's maintainers. Leaving an area one
// does not maintain is a no-op, not an error.
func (t *Tracker) Leave(a *model.Area, maintainer *model.User) (*model.Area, error) {
	if !a.IsMaintainer(maintainer.Name) {
		return a, nil
	}
	res := a.Clone()
	res.Maintainers = res.Maintainers.Remove(maintainer.Name)
	res.Rev++
	return res, nil
}

// Relocate moves a task into another area. Moving a task into any named
// area takes that area's maintainer, moving it out of a named area takes
// the source's maintainer; only the somewhere area is exempt on either
// side. Release tasks stay pinned to the origin area.
func (t *Tracker) Relocate(task *model.Task, to *model.Area, actor *model.User) (*model.Task, error) {
	if err := expectAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := expectUnsolved(task); err != nil {
		return nil, err
	}
	if to.Name.IsOrigin() || task.Area.Name.IsOrigin() {
		return nil, deny("release tasks are pinned to the origin area")
	}
	if !to.Product.EqualTo(task.Product.Name) {
		return nil, deny("area %s:%s is not part of product %s",
			to.Product.String(), to.Name.String(), task.Product.Name.String())
	}
	if task.Area.Name.EqualTo(to.Name) {
		return task, nil
	}
	if !task.Area.Name.IsUnknown() {
		if err := expectMaintainer(task.Area, actor); err != nil {
			return nil, err
		}
	}
	if !to.Name.IsUnknown() {
		if err := expectMaintainer(to, actor); err != nil {
			return nil, err
		}
	}
	res := task.Clone()
	res.Area = to
	res.Rev++
	return res, nil
}

// versions

// Tag creates a release label in the product.
func (t *Tracker) Tag(p *model.Product, version model.Name, actor *model.User) (*model.Version, error) {
	now := t.clock()
	if err := expectAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := expectMaintainer(p.Origin, actor); err != nil {
		return nil, err
	}
	if err := expectExternal(version); err != nil {
		return nil, err
	}
	if err := t.expectCanExtend(now); err != nil {
		return nil, err
	}
	v := &model.Version{
		Product: p.Name,
		Name:    version,
	}
	v.Rev = 1
	t.limits.Extended(now)
	return v, nil
}

// polls

// Poll opens a vote among the area's maintainers. The area's poll serial
// advances even if the poll later settles rejected. A poll that cannot be
// voted on at all settles immediately.
func (t *Tracker) Poll(matter model.Matter, a *model.Area, initiator *model.User, affected model.Name) (*model.Poll, *model.Area, error) {
	now := t.clock()
	if err := expectAuthenticated(initiator); err != nil {
		return nil, nil, err
	}
	if a.Name.IsUnknown() {
		return nil, nil, deny("the somewhere area has no maintainers to poll")
	}
	if err := expectMaintainer(a, initiator); err != nil {
		return nil, nil, err
	}
	if matter == model.Resignation || matter == model.Participation {
		if err := expectExternal(affected); err != nil {
			return nil, nil, err
		}
	} else if !affected.IsZero() {
		return nil, nil, deny("%s polls are not about a user", matter.String())
	}
	area := a.Clone()
	area.Polls++
	area.Rev++
	p := &model.Poll{
		Area:      area,
		Serial:    area.Polls,
		Matter:    matter,
		Initiator: initiator.Name,
		Affected:  affected,
		Start:     now,
	}
	p.Rev = 1
	if p.OutcomeFixed() {
		t.settle(p, now)
	}
	return p, area, nil
}

// Consent casts or switches a vote in favor. Settling may change the area;
// the returned area is nil when the poll stays open or settles rejected.
func (t *Tracker) Consent(p *model.Poll, voter *model.User) (*model.Poll, *model.Area, error) {
	return t.vote(p, voter, true)
}

// Dissent casts or switches a vote against.
func (t *Tracker) Dissent(p *model.Poll, voter *model.User) (*model.Poll, *model.Area, error) {
	return t.vote(p, voter, false)
}

func (t *Tracker) vote(p *model.Poll, voter *model.User, consent bool) (*model.Poll, *model.Area, error) {
	now := t.clock()
	if err := expectAuthenticated(voter); err != nil {
		return nil, nil, err
	}
	if p.IsSettled() {
		// the outcome is already applied; late votes change nothing
		return p, nil, nil
	}
	if !p.CanVote(voter.Name) {
		return nil, nil, deny("user %s has no vote in poll %s #%d",
			voter.Name.String(), p.Area.Name.String(), p.Serial)
	}
	res := p.Clone()
	if consent {
		res.Dissenting = res.Dissenting.Remove(voter.Name)
		res.Consenting = res.Consenting.Add(voter.Name)
	} else {
		res.Consenting = res.Consenting.Remove(voter.Name)
		res.Dissenting = res.Dissenting.Add(voter.Name)
	}
	res.Rev++
	if !res.OutcomeFixed() {
		return res, nil, nil
	}
	area := t.settle(res, now)
	return res, area, nil
}

// settle closes the poll and, if consented, applies its matter to a clone
// of the area. The matter applies exactly once; a settled poll rejects all
// further votes.
func (t *Tracker) settle(p *model.Poll, now int64) *model.Area {
	p.End = now
	if !p.IsConsented() {
		return nil
	}
	area := p.Area.Clone()
	switch p.Matter {
	case model.Inclusion:
		area.Exclusive = false
	case model.Exclusion:
		area.Exclusive = true
	case model.Resignation:
		area.Maintainers = area.Maintainers.Remove(p.Affected)
	case model.Participation:
		area.Maintainers = area.Maintainers.Add(p.Affected)
	}
	area.Rev++
	p.Area = area
	return area
}

// tasks

// report is the common trunk of all task creation. Reporting into any
// named area takes that area's maintainer; only the somewhere area is open
// to everyone. It advances the product's sequence counter, books the
// reporter's daily quota, and leaves anonymous reports unconfirmed.
func (t *Tracker) report(p *model.Product, motive model.Motive, purpose model.Purpose,
	gist model.Gist, reporter *model.User, area *model.Area, version *model.Version,
	exploitable bool) (*model.Task, *model.Product, *model.User, error) {

	now := t.clock()
	if area == nil {
		area = p.Somewhere
	}
	if version == nil {
		version = p.Somewhen
	}
	if !area.Name.IsUnknown() {
		if err := expectMaintainer(area, reporter); err != nil {
			return nil, nil, nil, err
		}
	}
	if !reporter.CanReport(now) {
		return nil, nil, nil, deny("user %s reached the daily report limit", reporter.Name.String())
	}
	confirmed := reporter.IsAuthenticated()
	if !confirmed && !p.AllowsAnonymousReports() {
		return nil, nil, nil, deny("product %s accepts no further anonymous reports", p.Name.String())
	}
	product := p.Clone()
	product.Tasks++
	if !confirmed {
		product.UnconfirmedTasks++
	}
	product.Rev++
	task := &model.Task{
		Product:     product,
		Serial:      model.IDN(product.Tasks),
		Gist:        gist,
		Motive:      motive,
		Purpose:     purpose,
		Status:      model.Unsolved,
		Exploitable: exploitable,
		Confirmed:   confirmed,
		Reporter:    reporter.Name,
		Start:       now,
		Area:        area,
		Version:     version,
	}
	task.Rev = 1
	user := reporter.Clone()
	user.Reported(now)
	user.LastActive = now
	user.Rev++
	return task, product, user, nil
}

// Propose reports a concrete change of how things should be.
func (t *Tracker) Propose(p *model.Product, gist model.Gist, reporter *model.User, area *model.Area) (*model.Task, *model.Product, *model.User, error) {
	return t.report(p, model.Proposal, model.Modification, gist, reporter, area, nil, false)
}

// Indicate reports that something particular should happen.
func (t *Tracker) Indicate(p *model.Product, gist model.Gist, reporter *model.User, area *model.Area) (*model.Task, *model.Product, *model.User, error) {
	return t.report(p, model.Intention, model.Modification, gist, reporter, area, nil, false)
}

// Warn reports a defect, optionally pinned to the version it appeared in.
// Exploitable defects stay hidden from public listings until solved.
func (t *Tracker) Warn(p *model.Product, gist model.Gist, reporter *model.User, area *model.Area, version *model.Version, exploitable bool) (*model.Task, *model.Product, *model.User, error) {
	return t.report(p, model.Defect, model.Modification, gist, reporter, area, version, exploitable)
}

// Announce reports a release task: the intent to publish the named changes
// as the given version. Release tasks live in the origin area, so only its
// maintainers announce. Resolving the task stamps the version's changeset.
func (t *Tracker) Announce(p *model.Product, version *model.Version, gist model.Gist, reporter *model.User, changeset model.Names) (*model.Task, *model.Product, *model.User, error) {
	if err := expectAuthenticated(reporter); err != nil {
		return nil, nil, nil, err
	}
	if version.IsUnknown() {
		return nil, nil, nil, deny("a release needs a concrete version")
	}
	if !version.Changeset.IsEmpty() {
		return nil, nil, nil, deny("version %s is already released", version.Name.String())
	}
	task, product, user, err := t.report(p, model.Release, model.Publication, gist, reporter, p.Origin, version, false)
	if err != nil {
		return nil, nil, nil, err
	}
	task.Changeset = changeset.Clone()
	return task, product, user, nil
}

// Fork reports a follow-up task caused by an existing one. The fork
// inherits motive, area and version; the cause chain keeps the root origin.
func (t *Tracker) Fork(basis *model.Task, purpose model.Purpose, gist model.Gist, reporter *model.User) (*model.Task, *model.Product, *model.User, error) {
	task, product, user, err := t.report(basis.Product, basis.Motive, purpose, gist, reporter, basis.Area, basis.Version, basis.Exploitable)
	if err != nil {
		return nil, nil, nil, err
	}
	task.Cause = basis.Serial
	task.Origin = basis.Origin
	if task.Origin == 0 {
		task.Origin = basis.Serial
	}
	return task, product, user, nil
}

// ConfirmTask marks an anonymous report as genuine. Takes a maintainer of
// the task's area or of the product's origin. Confirming a confirmed task
// is a no-op.
func (t *Tracker) ConfirmTask(task *model.Task, maintainer *model.User) (*model.Task, *model.Product, error) {
	if err := expectAuthenticated(maintainer); err != nil {
		return nil, nil, err
	}
	if err := expectUnsolved(task); err != nil {
		return nil, nil, err
	}
	if !task.Area.IsMaintainer(maintainer.Name) && !task.Product.Origin.IsMaintainer(maintainer.Name) {
		return nil, nil, deny("user %s does not maintain task %s #%d",
			maintainer.Name.String(), task.Product.Name.String(), task.Serial)
	}
	if task.Confirmed {
		return task, task.Product, nil
	}
	product := task.Product.Clone()
	product.UnconfirmedTasks--
	product.Rev++
	res := task.Clone()
	res.Product = product
	res.Confirmed = true
	res.Rev++
	return res, product, nil
}

// Absolve concludes a task without any change having been made.
func (t *Tracker) Absolve(task *model.Task, by *model.User, conclusion model.Gist) (*model.Task, *model.User, error) {
	res, user, err := t.solve(task, by, conclusion, model.Absolved)
	if err != nil {
		return nil, nil, err
	}
	user.Absolved++
	return res, user, nil
}

// Resolve concludes a task as done. Resolving a release task stamps the
// target version's changeset; the stamped version is returned then.
func (t *Tracker) Resolve(task *model.Task, by *model.User, conclusion model.Gist) (*model.Task, *model.User, *model.Version, error) {
	res, user, err := t.solve(task, by, conclusion, model.Resolved)
	if err != nil {
		return nil, nil, nil, err
	}
	user.Resolved++
	user.XP += 2
	var version *model.Version
	if task.Motive == model.Release && !task.Version.IsUnknown() && !task.Changeset.IsEmpty() {
		version = task.Version.Clone()
		version.Changeset = task.Changeset.Clone()
		version.Rev++
		res.Version = version
	}
	return res, user, version, nil
}

// Dissolve concludes a task as not going to happen.
func (t *Tracker) Dissolve(task *model.Task, by *model.User, conclusion model.Gist) (*model.Task, *model.User, error) {
	res, user, err := t.solve(task, by, conclusion, model.Dissolved)
	if err != nil {
		return nil, nil, err
	}
	user.Dissolved++
	user.XP += 5
	return res, user, nil
}

func (t *Tracker) solve(task *model.Task, by *model.User, conclusion model.Gist, status model.Status) (*model.Task, *model.User, error) {
	now := t.clock()
	if err := expectAuthenticated(by); err != nil {
		return nil, nil, err
	}
	if err := expectUnsolved(task); err != nil {
		return nil, nil, err
	}
	// tasks left in the somewhere area have nobody responsible, anyone
	// authenticated may conclude them
	if !task.Area.Name.IsUnknown() {
		if err := expectMaintainer(task.Area, by); err != nil {
			return nil, nil, err
		}
	}
	res := task.Clone()
	res.Status = status
	res.Solver = by.Name
	res.Conclusion = conclusion
	res.End = now
	res.Rev++
	user := by.Clone()
	user.LastActive = now
	user.Rev++
	return res, user, nil
}

// Emphasize heats a task up. A voter in cool-down or over the daily cap
// changes nothing; the inputs come back unchanged and nothing is written.
func (t *Tracker) Emphasize(task *model.Task, voter *model.User) (*model.Task, *model.User, error) {
	now := t.clock()
	if err := expectUnsolved(task); err != nil {
		return nil, nil, err
	}
	if !voter.CanEmphasize(now) {
		return task, voter, nil
	}
	res := task.Clone()
	res.HeatUp(now)
	res.Rev++
	user := voter.Clone()
	user.Emphasized(now)
	user.LastActive = now
	user.Rev++
	return res, user, nil
}

// maxInvolved caps how many users queue on or work on one task.
const maxInvolved = 5

func (t *Tracker) expectCanEngage(task *model.Task, u *model.User) error {
	if err := expectAuthenticated(u); err != nil {
		return err
	}
	if err := expectUnsolved(task); err != nil {
		return err
	}
	if task.Area.Exclusive && !task.Area.IsMaintainer(u.Name) {
		return deny("area %s:%s is exclusive to its maintainers",
			task.Area.Product.String(), task.Area.Name.String())
	}
	involved := task.Marked.Contains(u.Name) || task.Started.Contains(u.Name)
	if !involved && task.Involved() >= maxInvolved {
		return deny("task %s #%d already involves %d users",
			task.Product.Name.String(), task.Serial, maxInvolved)
	}
	return nil
}

// Mark queues the user on the task. A user is marked or started, never
// both; marking an already marked user is a no-op.
func (t *Tracker) Mark(task *model.Task, u *model.User) (*model.Task, error) {
	if err := t.expectCanEngage(task, u); err != nil {
		return nil, err
	}
	if task.Marked.Contains(u.Name) {
		return task, nil
	}
	res := task.Clone()
	res.Started = res.Started.Remove(u.Name)
	res.Marked = res.Marked.Add(u.Name)
	res.Rev++
	return res, nil
}

// Drop takes the user off the task entirely. Dropping an uninvolved user
// is a no-op.
func (t *Tracker) Drop(task *model.Task, u *model.User) (*model.Task, error) {
	if err := expectAuthenticated(u); err != nil {
		return nil, err
	}
	if err := expectUnsolved(task); err != nil {
		return nil, err
	}
	if !task.Marked.Contains(u.Name) && !task.Started.Contains(u.Name) {
		return task, nil
	}
	res := task.Clone()
	res.Marked = res.Marked.Remove(u.Name)
	res.Started = res.Started.Remove(u.Name)
	res.Rev++
	return res, nil
}

// Start moves the user from queueing to working on the task.
func (t *Tracker) Start(task *model.Task, u *model.User) (*model.Task, error) {
	if err := t.expectCanEngage(task, u); err != nil {
		return nil, err
	}
	if task.Started.Contains(u.Name) {
		return task, nil
	}
	res := task.Clone()
	res.Marked = res.Marked.Remove(u.Name)
	res.Started = res.Started.Add(u.Name)
	res.Rev++
	return res, nil
}
