package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"daybook/config"
	"daybook/tasks"
)

// DefaultKey is the slot key holding the task collection
const DefaultKey = config.DefaultKey

// PersistenceError wraps a failed read or write of the task blob
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Adapter stores the whole task collection as one JSON blob in a Slot.
// Failures are logged and swallowed; it implements tasks.Persister.
type Adapter struct {
	slot    Slot
	key     string
	logger  *log.Logger
	verbose bool
	timeout time.Duration
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithKey sets the slot key
func WithKey(key string) AdapterOption {
	return func(a *Adapter) {
		a.key = key
	}
}

// WithLogger sets the logger that receives persistence failures
func WithLogger(l *log.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithVerbose logs every load and save, not only failures
func WithVerbose(verbose bool) AdapterOption {
	return func(a *Adapter) {
		a.verbose = verbose
	}
}

// WithTimeout bounds each slot call
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter creates an adapter over slot
func NewAdapter(slot Slot, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		slot:    slot,
		key:     DefaultKey,
		logger:  log.Default(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the slot key the adapter writes to
func (a *Adapter) Key() string {
	return a.key
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), a.timeout)
}

// Save writes the full collection. Errors are logged, never returned.
func (a *Adapter) Save(list []tasks.Task) {
	if err := a.save(list); err != nil {
		a.logger.Printf("warning: failed to save tasks: %v", err)
		return
	}
	if a.verbose {
		a.logger.Printf("saved %d tasks to %s", len(list), a.key)
	}
}

func (a *Adapter) save(list []tasks.Task) error {
	data, err := Encode(list)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: a.key, Err: err}
	}

	ctx, cancel := a.context()
	defer cancel()

	if err := a.slot.Put(ctx, a.key, data); err != nil {
		return &PersistenceError{Op: "write", Key: a.key, Err: err}
	}
	return nil
}

// Load reads the collection. A missing blob yields an empty collection
// silently; unreadable or invalid blobs are logged and also yield one.
func (a *Adapter) Load() []tasks.Task {
	list, err := a.load()
	if err != nil {
		a.logger.Printf("warning: failed to load tasks, starting empty: %v", err)
		return []tasks.Task{}
	}
	if a.verbose {
		a.logger.Printf("loaded %d tasks from %s", len(list), a.key)
	}
	return list
}

func (a *Adapter) load() ([]tasks.Task, error) {
	ctx, cancel := a.context()
	defer cancel()

	data, err := a.slot.Get(ctx, a.key)
	if errors.Is(err, ErrNoValue) {
		return []tasks.Task{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: a.key, Err: err}
	}

	list, err := Decode(data)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Key: a.key, Err: err}
	}
	return list, nil
}

// Encode serializes tasks as a JSON array of records
func Encode(list []tasks.Task) ([]byte, error) {
	return json.MarshalIndent(Records(list), "", "  ")
}

// Decode parses a JSON array of records. Any invalid record or a
// repeated id makes the whole blob invalid.
func Decode(data []byte) ([]tasks.Task, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	list := make([]tasks.Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		t, err := decodeRecord(r)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = true
		list = append(list, t)
	}
	return list, nil
}
