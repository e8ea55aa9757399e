package engine

import (
	"bytes"
	"fmt"

	"github.com/trackline/trackline/internal/codec"
	"github.com/trackline/trackline/internal/model"
	"github.com/trackline/trackline/internal/store"
)

// DAO reads entities from a store transaction through a load-once memo.
//
// The memo holds the pristine instance of every loaded entity for the
// lifetime of the transaction: repeated lookups return the same object,
// and the transaction layer uses the pristine instance as the before-image
// of its changelog entries. An optional changed hook is consulted first so
// reads after a mutation in the same transaction observe the new snapshot
// without touching storage.
//
// DAO also serves as the codec's decode context, so foreign-key fields
// rehydrated during decode flow through the same memo.
type DAO struct {
	tx     store.TxR
	loaded map[string]model.Entity

	// changed, when set, resolves entities already mutated in the owning
	// transaction. Checked before the memo and the store.
	changed func(model.ID) (model.Entity, bool)
}

// NewDAO wraps a read transaction. The caller keeps ownership of tx.
func NewDAO(tx store.TxR) *DAO {
	return &DAO{tx: tx, loaded: make(map[string]model.Entity)}
}

// Close releases the underlying store transaction.
func (d *DAO) Close() { d.tx.Close() }

// pristine returns the memoized loaded instance for id, if any. The
// transaction layer reads before-images from here.
func (d *DAO) pristine(id model.ID) (model.Entity, bool) {
	e, ok := d.loaded[string(id.Bytes())]
	return e, ok
}

func (d *DAO) load(id model.ID, decode func([]byte) (model.Entity, error)) (model.Entity, error) {
	if d.changed != nil {
		if e, ok := d.changed(id); ok {
			return e, nil
		}
	}
	key := string(id.Bytes())
	if e, ok := d.loaded[key]; ok {
		return e, nil
	}
	data, err := d.tx.Get(id.Bytes())
	if err == store.ErrNotFound {
		return nil, &UnknownEntity{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id.String(), err)
	}
	e, err := decode(data)
	if err != nil {
		return nil, err
	}
	d.loaded[key] = e
	return e, nil
}

func (d *DAO) User(name model.Name) (*model.User, error) {
	e, err := d.load(model.UserID(name), func(data []byte) (model.Entity, error) {
		return codec.DecodeUser(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.User), nil
}

func (d *DAO) Product(name model.Name) (*model.Product, error) {
	e, err := d.load(model.ProductID(name), func(data []byte) (model.Entity, error) {
		return codec.DecodeProduct(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Product), nil
}

func (d *DAO) Area(product, area model.Name) (*model.Area, error) {
	e, err := d.load(model.AreaID(product, area), func(data []byte) (model.Entity, error) {
		return codec.DecodeArea(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Area), nil
}

func (d *DAO) Version(product, version model.Name) (*model.Version, error) {
	e, err := d.load(model.VersionID(product, version), func(data []byte) (model.Entity, error) {
		return codec.DecodeVersion(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Version), nil
}

func (d *DAO) Task(product model.Name, serial model.IDN) (*model.Task, error) {
	e, err := d.load(model.TaskID(product, serial), func(data []byte) (model.Entity, error) {
		return codec.DecodeTask(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Task), nil
}

func (d *DAO) Poll(product, area model.Name, serial model.IDN) (*model.Poll, error) {
	e, err := d.load(model.PollID(product, area, serial), func(data []byte) (model.Entity, error) {
		return codec.DecodePoll(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Poll), nil
}

func (d *DAO) Site(owner, site model.Name) (*model.Site, error) {
	e, err := d.load(model.SiteID(owner, site), func(data []byte) (model.Entity, error) {
		return codec.DecodeSite(d, data)
	})
	if err != nil {
		return nil, err
	}
	return e.(*model.Site), nil
}

// Event loads a single event record. Events are immutable once written and
// are not memoized.
func (d *DAO) Event(timestamp int64) (*model.Event, error) {
	id := model.EventID(timestamp)
	data, err := d.tx.Get(id.Bytes())
	if err == store.ErrNotFound {
		return nil, &UnknownEntity{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id.String(), err)
	}
	return codec.DecodeEvent(data)
}

// History loads the event history of an entity. Not memoized.
func (d *DAO) History(entity model.ID) (*model.History, error) {
	id := model.HistoryID(entity)
	data, err := d.tx.Get(id.Bytes())
	if err == store.ErrNotFound {
		return nil, &UnknownEntity{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id.String(), err)
	}
	return codec.DecodeHistory(data)
}

// Tasks scans the product's task namespace in ascending sequence order.
// The scan stops at the first key outside the product's prefix or as soon
// as visit returns false. Scanned tasks flow through the memo like any
// other lookup.
func (d *DAO) Tasks(product model.Name, visit func(*model.Task) bool) error {
	prefix := model.TaskScanPrefix(product).Bytes()
	var decodeErr error
	err := d.tx.Range(prefix, func(key, value []byte) bool {
		if !bytes.HasPrefix(key, prefix) {
			return false // next product's namespace reached
		}
		var task *model.Task
		if d.changed != nil {
			if e, ok := d.changed(model.IDFromStored(key)); ok {
				task = e.(*model.Task)
			}
		}
		if task == nil {
			if e, ok := d.loaded[string(key)]; ok {
				task = e.(*model.Task)
			}
		}
		if task == nil {
			t, err := codec.DecodeTask(d, value)
			if err != nil {
				decodeErr = err
				return false
			}
			d.loaded[string(key)] = t
			task = t
		}
		return visit(task)
	})
	if decodeErr != nil {
		return decodeErr
	}
	if err != nil {
		return fmt.Errorf("scan tasks of %s: %w", product.String(), err)
	}
	return nil
}
