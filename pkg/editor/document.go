// Package editor coordinates edits against a single remote document.
//
// A Document caches the document body, derives the section and table models
// from it, and applies location edits and comments through a
// workspace.Collaborator. Local models are only ever rebuilt from a body the
// service returned; a failed edit never changes them.
//
// Document is not safe for concurrent use. Callers serialise operations per
// document.
package editor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/table"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// State is the synchronisation state of a Document's cached body.
type State int

const (
	// StateUnloaded means no body is cached; the next read fetches it.
	StateUnloaded State = iota

	// StateClean means the cached body is the last one the service returned.
	StateClean

	// StatePending means an edit is in flight.
	StatePending

	// StateStale means the last edit failed. The cached body is unchanged but
	// may no longer match the service; the next read fetches it again.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateClean:
		return "clean"
	case StatePending:
		return "pending"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Document is a remote document together with its locally derived models.
type Document struct {
	id     string
	link   string
	collab workspace.Collaborator
	logger hclog.Logger

	state    State
	body     string
	sections []section.Section
	tables   []*table.Table
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger. Tables handed out by the document log through
// it as well.
func WithLogger(logger hclog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns a Document for id. Nothing is fetched until the body or one of
// the derived models is first needed.
func New(id string, collab workspace.Collaborator, opts ...Option) *Document {
	d := &Document{
		id:     id,
		collab: collab,
		logger: hclog.NewNullLogger(),
		state:  StateUnloaded,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("editor").With("document_id", id)
	return d
}

// Create creates a new document through svc and returns it already loaded
// with the body the service produced.
func Create(ctx context.Context, svc workspace.Service, req *workspace.CreateRequest, opts ...Option) (*Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid create request: %w", err)
	}

	info, err := svc.CreateDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", docerr.Remote("create document", err))
	}

	d := New(info.ID, svc, opts...)
	d.link = info.Link
	if info.HTML != "" {
		d.install(info.HTML)
	}
	d.logger.Debug("document created", "title", info.Title, "type", info.Type)
	return d, nil
}

// ID returns the document id.
func (d *Document) ID() string {
	return d.id
}

// Link returns the web address of the document. It is only known for
// documents returned by Create.
func (d *Document) Link() string {
	return d.link
}

// State returns the current synchronisation state.
func (d *Document) State() State {
	return d.state
}

// Body returns the document HTML, fetching it if no confirmed body is cached.
func (d *Document) Body(ctx context.Context) (string, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return "", err
	}
	return d.body, nil
}

// Reload discards the cached body and fetches it again.
func (d *Document) Reload(ctx context.Context) error {
	return d.fetch(ctx)
}

// Sections returns the sections of the current body in document order.
func (d *Document) Sections(ctx context.Context) ([]section.Section, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]section.Section, len(d.sections))
	copy(out, d.sections)
	return out, nil
}

// Tables returns the tables of the current body in document order. The
// returned tables remain usable after they mutate the document; each
// successful table mutation invalidates the cached body and each failed one
// marks it stale, so the next read fetches fresh models.
func (d *Document) Tables(ctx context.Context) ([]*table.Table, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]*table.Table, len(d.tables))
	copy(out, d.tables)
	return out, nil
}

// TableIDs returns the ids of the tables in the current body.
func (d *Document) TableIDs(ctx context.Context) ([]string, error) {
	tables, err := d.Tables(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID()
	}
	return ids, nil
}

// TableByID returns the table with the given element id.
func (d *Document) TableByID(ctx context.Context, id string) (*table.Table, error) {
	tables, err := d.Tables(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, docerr.TableNotFound(id)
}

func (d *Document) ensureLoaded(ctx context.Context) error {
	if d.state == StateClean {
		return nil
	}
	return d.fetch(ctx)
}

func (d *Document) fetch(ctx context.Context) error {
	body, err := d.collab.FetchBody(ctx, d.id)
	if err != nil {
		return fmt.Errorf("error fetching document %q: %w", d.id, docerr.Remote("fetch body", err))
	}
	d.install(body)
	d.logger.Debug("body fetched", "sections", len(d.sections), "tables", len(d.tables))
	return nil
}

// install replaces the cached body and rebuilds every derived model from it.
func (d *Document) install(body string) {
	d.body = body
	d.sections = section.Parse(body)
	d.tables = table.Parse(d.id, body, d.collab, table.WithLogger(d.logger))
	for _, t := range d.tables {
		t.OnCommit(d.invalidate)
		t.OnFailure(d.markStale)
	}
	d.state = StateClean
}

func (d *Document) markStale(err error) {
	d.state = StateStale
	d.logger.Debug("table mutation failed, body marked stale", "error", err)
}

func (d *Document) invalidate() {
	d.body = ""
	d.sections = nil
	d.tables = nil
	d.state = StateUnloaded
}
