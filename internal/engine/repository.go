package engine

import "github.com/trackline/trackline/internal/model"

// Clock supplies wall-clock milliseconds. Passed into every transaction
// run alongside the Limits value so the core holds no ambient state and
// tests control time.
type Clock func() int64

// Repository is the read surface of one transaction. Getters fail with
// UnknownEntity when the key is absent. Within one transaction, repeated
// lookups of the same key return the same instance.
type Repository interface {
	User(name model.Name) (*model.User, error)
	Product(name model.Name) (*model.Product, error)
	Area(product, area model.Name) (*model.Area, error)
	Version(product, version model.Name) (*model.Version, error)
	Task(product model.Name, serial model.IDN) (*model.Task, error)
	Poll(product, area model.Name, serial model.IDN) (*model.Poll, error)
	Site(owner, site model.Name) (*model.Site, error)
	Event(timestamp int64) (*model.Event, error)
	History(entity model.ID) (*model.History, error)

	// Tasks visits the product's tasks in ascending sequence order until
	// visit returns false. The underlying scan stops at the product's key
	// prefix boundary; it never walks the whole store.
	Tasks(product model.Name, visit func(*model.Task) bool) error

	Close()
}
