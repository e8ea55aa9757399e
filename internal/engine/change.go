package engine

import "github.com/trackline/trackline/internal/model"

// Tx is the surface a Change runs against: the transaction's repository
// plus Put, which records an operation's outcome for one entity. Put on a
// snapshot whose revision did not move records a no-op changelog entry and
// writes nothing.
type Tx interface {
	Repository

	Put(op model.Operation, e model.Entity) error
}

// Change is a deferred unit of work bound to entity keys only. It resolves
// its entities through the transaction, runs the rule engine, and records
// the outcomes. Run applies it atomically; composing with And yields one
// transaction covering both parts.
type Change func(t *Tracker, tx Tx) error

// And sequences another change into the same transaction. The combined
// change fails as a whole if either part fails.
func (c Change) And(next Change) Change {
	return func(t *Tracker, tx Tx) error {
		if err := c(t, tx); err != nil {
			return err
		}
		return next(t, tx)
	}
}

// users

// Register creates an account for name, or re-mints the sign-in token when
// the account exists under the same email.
func Register(name model.Name, email model.Email) Change {
	return func(t *Tracker, tx Tx) error {
		existing, err := tx.User(name)
		if err != nil && !IsUnknownEntity(err) {
			return err
		}
		user, err := t.Register(existing, name, email)
		if err != nil {
			return err
		}
		return tx.Put(model.OpRegister, user)
	}
}

// Confirm redeems the user's one-time token.
func Confirm(name model.Name, token []byte) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(name)
		if err != nil {
			return err
		}
		user, err := t.Confirm(u, token)
		if err != nil {
			return err
		}
		return tx.Put(model.OpConfirm, user)
	}
}

// Authenticate re-mints the user's sign-in token.
func Authenticate(name model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(name)
		if err != nil {
			return err
		}
		user, err := t.Authenticate(u)
		if err != nil {
			return err
		}
		return tx.Put(model.OpAuthenticate, user)
	}
}

// Configure replaces the user's notification preferences.
func Configure(name model.Name, prefs map[model.Notification]model.Delivery) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(name)
		if err != nil {
			return err
		}
		user, err := t.Configure(u, prefs)
		if err != nil {
			return err
		}
		return tx.Put(model.OpConfigure, user)
	}
}

// sites

// Launch creates a dashboard for its owner.
func Launch(owner, site model.Name, template model.Template) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(owner)
		if err != nil {
			return err
		}
		s, user, err := t.Launch(u, site, template)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpLaunch, user); err != nil {
			return err
		}
		return tx.Put(model.OpLaunch, s)
	}
}

// Restructure replaces a dashboard's template.
func Restructure(owner, site model.Name, template model.Template) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(owner)
		if err != nil {
			return err
		}
		s, err := tx.Site(owner, site)
		if err != nil {
			return err
		}
		res, err := t.Restructure(s, u, template)
		if err != nil {
			return err
		}
		return tx.Put(model.OpRestructure, res)
	}
}

// products

// Constitute creates a product and its implicit children in one go.
func Constitute(product, originator model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(originator)
		if err != nil {
			return err
		}
		p, err := t.Constitute(product, u)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpConstitute, p); err != nil {
			return err
		}
		if err := tx.Put(model.OpConstitute, p.Origin); err != nil {
			return err
		}
		if err := tx.Put(model.OpConstitute, p.Somewhere); err != nil {
			return err
		}
		return tx.Put(model.OpConstitute, p.Somewhen)
	}
}

// areas

// Compart creates a top-level area in the product.
func Compart(product, area, actor model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		a, err := t.Compart(p, area, u)
		if err != nil {
			return err
		}
		return tx.Put(model.OpCompart, a)
	}
}

// CompartPartition splits a new area off an existing basis.
func CompartPartition(product, basis, partition, actor model.Name, subordinate bool) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		b, err := tx.Area(product, basis)
		if err != nil {
			return err
		}
		a, err := t.CompartPartition(b, partition, u, subordinate)
		if err != nil {
			return err
		}
		return tx.Put(model.OpCompart, a)
	}
}

// Leave removes the user from the area's maintainers.
func Leave(product, area, maintainer model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(maintainer)
		if err != nil {
			return err
		}
		a, err := tx.Area(product, area)
		if err != nil {
			return err
		}
		res, err := t.Leave(a, u)
		if err != nil {
			return err
		}
		return tx.Put(model.OpLeave, res)
	}
}

// Relocate moves a task into another area of its product.
func Relocate(product model.Name, serial model.IDN, to, actor model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		a, err := tx.Area(product, to)
		if err != nil {
			return err
		}
		res, err := t.Relocate(task, a, u)
		if err != nil {
			return err
		}
		return tx.Put(model.OpRelocate, res)
	}
}

// versions

// Tag creates a release label in the product.
func Tag(product, version, actor model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(actor)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		v, err := t.Tag(p, version, u)
		if err != nil {
			return err
		}
		return tx.Put(model.OpTag, v)
	}
}

// polls

// Poll opens a vote among the area's maintainers. affected is only set for
// resignation and participation polls.
func Poll(matter model.Matter, product, area, initiator, affected model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(initiator)
		if err != nil {
			return err
		}
		a, err := tx.Area(product, area)
		if err != nil {
			return err
		}
		p, changed, err := t.Poll(matter, a, u, affected)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpPoll, changed); err != nil {
			return err
		}
		return tx.Put(model.OpPoll, p)
	}
}

// Consent casts or switches a vote in favor.
func Consent(product, area model.Name, serial model.IDN, voter model.Name) Change {
	return vote(model.OpConsent, product, area, serial, voter)
}

// Dissent casts or switches a vote against.
func Dissent(product, area model.Name, serial model.IDN, voter model.Name) Change {
	return vote(model.OpDissent, product, area, serial, voter)
}

func vote(op model.Operation, product, area model.Name, serial model.IDN, voter model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(voter)
		if err != nil {
			return err
		}
		p, err := tx.Poll(product, area, serial)
		if err != nil {
			return err
		}
		var res *model.Poll
		var settled *model.Area
		if op == model.OpConsent {
			res, settled, err = t.Consent(p, u)
		} else {
			res, settled, err = t.Dissent(p, u)
		}
		if err != nil {
			return err
		}
		if err := tx.Put(op, res); err != nil {
			return err
		}
		if settled != nil {
			return tx.Put(op, settled)
		}
		return nil
	}
}

// tasks

func putReport(tx Tx, op model.Operation, task *model.Task, product *model.Product, user *model.User) error {
	if err := tx.Put(op, user); err != nil {
		return err
	}
	if err := tx.Put(op, product); err != nil {
		return err
	}
	return tx.Put(op, task)
}

// reporterOf resolves the reporting user. An unknown email-shaped name
// enters as a fresh anonymous account right here; any other name must
// belong to a registered account.
func reporterOf(t *Tracker, tx Tx, name model.Name) (*model.User, error) {
	u, err := tx.User(name)
	if IsUnknownEntity(err) && name.IsEmail() {
		return t.Anonymous(name)
	}
	return u, err
}

// areaOrNil resolves area when set; a zero name means the product default.
func areaOrNil(tx Tx, product, area model.Name) (*model.Area, error) {
	if area.IsZero() {
		return nil, nil
	}
	return tx.Area(product, area)
}

// Propose reports a proposal task.
func Propose(product model.Name, gist model.Gist, reporter, area model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := reporterOf(t, tx, reporter)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		a, err := areaOrNil(tx, product, area)
		if err != nil {
			return err
		}
		task, changed, user, err := t.Propose(p, gist, u, a)
		if err != nil {
			return err
		}
		return putReport(tx, model.OpPropose, task, changed, user)
	}
}

// Indicate reports an intention task.
func Indicate(product model.Name, gist model.Gist, reporter, area model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := reporterOf(t, tx, reporter)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		a, err := areaOrNil(tx, product, area)
		if err != nil {
			return err
		}
		task, changed, user, err := t.Indicate(p, gist, u, a)
		if err != nil {
			return err
		}
		return putReport(tx, model.OpIndicate, task, changed, user)
	}
}

// Warn reports a defect task. A zero version pins the defect to nothing.
func Warn(product model.Name, gist model.Gist, reporter, area, version model.Name, exploitable bool) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := reporterOf(t, tx, reporter)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		a, err := areaOrNil(tx, product, area)
		if err != nil {
			return err
		}
		var v *model.Version
		if !version.IsZero() {
			if v, err = tx.Version(product, version); err != nil {
				return err
			}
		}
		task, changed, user, err := t.Warn(p, gist, u, a, v, exploitable)
		if err != nil {
			return err
		}
		return putReport(tx, model.OpWarn, task, changed, user)
	}
}

// Announce reports a release task for the version.
func Announce(product, version model.Name, gist model.Gist, reporter model.Name, changeset model.Names) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(reporter)
		if err != nil {
			return err
		}
		p, err := tx.Product(product)
		if err != nil {
			return err
		}
		v, err := tx.Version(product, version)
		if err != nil {
			return err
		}
		task, changed, user, err := t.Announce(p, v, gist, u, changeset)
		if err != nil {
			return err
		}
		return putReport(tx, model.OpAnnounce, task, changed, user)
	}
}

// Fork reports a follow-up task caused by an existing one.
func Fork(product model.Name, cause model.IDN, purpose model.Purpose, gist model.Gist, reporter model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := reporterOf(t, tx, reporter)
		if err != nil {
			return err
		}
		basis, err := tx.Task(product, cause)
		if err != nil {
			return err
		}
		task, changed, user, err := t.Fork(basis, purpose, gist, u)
		if err != nil {
			return err
		}
		return putReport(tx, model.OpFork, task, changed, user)
	}
}

// ConfirmTask marks an anonymous report as genuine.
func ConfirmTask(product model.Name, serial model.IDN, maintainer model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(maintainer)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		res, changed, err := t.ConfirmTask(task, u)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpConfirmTask, changed); err != nil {
			return err
		}
		return tx.Put(model.OpConfirmTask, res)
	}
}

// Absolve concludes a task without a change having been made.
func Absolve(product model.Name, serial model.IDN, by model.Name, conclusion model.Gist) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(by)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		res, user, err := t.Absolve(task, u, conclusion)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpAbsolve, user); err != nil {
			return err
		}
		return tx.Put(model.OpAbsolve, res)
	}
}

// Resolve concludes a task as done.
func Resolve(product model.Name, serial model.IDN, by model.Name, conclusion model.Gist) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(by)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		res, user, version, err := t.Resolve(task, u, conclusion)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpResolve, user); err != nil {
			return err
		}
		if err := tx.Put(model.OpResolve, res); err != nil {
			return err
		}
		if version != nil {
			return tx.Put(model.OpResolve, version)
		}
		return nil
	}
}

// Dissolve concludes a task as not going to happen.
func Dissolve(product model.Name, serial model.IDN, by model.Name, conclusion model.Gist) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(by)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		res, user, err := t.Dissolve(task, u, conclusion)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpDissolve, user); err != nil {
			return err
		}
		return tx.Put(model.OpDissolve, res)
	}
}

// Emphasize heats a task up within the voter's quota.
func Emphasize(product model.Name, serial model.IDN, voter model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(voter)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		res, user, err := t.Emphasize(task, u)
		if err != nil {
			return err
		}
		if err := tx.Put(model.OpEmphasize, user); err != nil {
			return err
		}
		return tx.Put(model.OpEmphasize, res)
	}
}

// Mark queues the user on the task.
func Mark(product model.Name, serial model.IDN, user model.Name) Change {
	return engage(model.OpMark, product, serial, user)
}

// Drop takes the user off the task.
func Drop(product model.Name, serial model.IDN, user model.Name) Change {
	return engage(model.OpDrop, product, serial, user)
}

// Start moves the user from queueing to working on the task.
func Start(product model.Name, serial model.IDN, user model.Name) Change {
	return engage(model.OpStart, product, serial, user)
}

func engage(op model.Operation, product model.Name, serial model.IDN, name model.Name) Change {
	return func(t *Tracker, tx Tx) error {
		u, err := tx.User(name)
		if err != nil {
			return err
		}
		task, err := tx.Task(product, serial)
		if err != nil {
			return err
		}
		var res *model.Task
		switch op {
		case model.OpMark:
			res, err = t.Mark(task, u)
		case model.OpDrop:
			res, err = t.Drop(task, u)
		default:
			res, err = t.Start(task, u)
		}
		if err != nil {
			return err
		}
		return tx.Put(op, res)
	}
}
