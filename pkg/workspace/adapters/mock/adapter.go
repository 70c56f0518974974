// Package mock provides an in-memory fake of the document service for tests.
//
// FakeService keeps every document as a parsed DOM tree and applies edits to
// it the way the real service does: new blocks, tables, rows and cells are
// given fresh ids, submitted fragments are sanitised, Markdown is converted to
// HTML, and table-scoped operations refuse to delete a table's last row.
//
// Every call is recorded (see Calls) and any operation can be made to fail
// once with FailNext, which makes the fake suitable for atomicity tests.
package mock

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Op names a recorded operation.
type Op string

const (
	OpFetchBody    Op = "fetch_body"
	OpLocationEdit Op = "location_edit"
	OpCellUpdate   Op = "cell_update"
	OpRowInsert    Op = "row_insert"
	OpRowRemove    Op = "row_remove"
	OpMessage      Op = "message"
	OpCreate       Op = "create"
)

// Call is one recorded operation.
type Call struct {
	Op         Op
	DocumentID string
	Detail     string
	At         time.Time
}

// FakeDocument is a document held by the fake.
type FakeDocument struct {
	ID          string
	Title       string
	Type        workspace.DocumentType
	CreatedUsec int64
	UpdatedUsec int64

	// body is the <body> element of the parsed document.
	body *html.Node
}

// HTML renders the document body.
func (d *FakeDocument) HTML() string {
	return htmlutil.InnerHTML(d.body)
}

// annotation is a comment thread anchored on sections of one document.
type annotation struct {
	documentID string
	sectionIDs []string
}

// FakeService is an in-memory implementation of workspace.Service.
type FakeService struct {
	mu sync.RWMutex

	// Documents stores documents by id
	Documents map[string]*FakeDocument

	// Messages stores posted messages by document id, oldest first
	Messages map[string][]*workspace.Message

	// annotations maps annotation ids to their thread
	annotations map[string]*annotation

	// sectionAnnotations maps "documentID/sectionID" to an annotation id
	sectionAnnotations map[string]string

	// denied documents return docerr.ErrUnauthorized
	denied map[string]bool

	// failures holds errors queued by FailNext
	failures map[Op][]error

	calls []Call

	userID   string
	userName string
	ackBody  bool

	ids      docid.Generator
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	logger   hclog.Logger
	now      func() time.Time
}

// Compile-time interface checks
var (
	_ workspace.Service         = (*FakeService)(nil)
	_ workspace.Collaborator    = (*FakeService)(nil)
	_ workspace.BodyFetcher     = (*FakeService)(nil)
	_ workspace.LocationEditor  = (*FakeService)(nil)
	_ workspace.TableEditor     = (*FakeService)(nil)
	_ workspace.MessagePoster   = (*FakeService)(nil)
	_ workspace.DocumentCreator = (*FakeService)(nil)
)

// Option configures a FakeService.
type Option func(*FakeService)

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(f *FakeService) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithIDGenerator replaces the random id generator, typically with a
// docid.Sequence for predictable ids.
func WithIDGenerator(gen docid.Generator) Option {
	return func(f *FakeService) {
		f.ids = gen
	}
}

// WithUser sets the author recorded on posted messages.
func WithUser(id, name string) Option {
	return func(f *FakeService) {
		f.userID = id
		f.userName = name
	}
}

// WithoutAckBody makes table operations acknowledge with dimensions only,
// like a service that does not return the document body.
func WithoutAckBody() Option {
	return func(f *FakeService) {
		f.ackBody = false
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *FakeService) {
		f.now = now
	}
}

// NewFakeService creates an empty fake service.
func NewFakeService(opts ...Option) *FakeService {
	f := &FakeService{
		Documents:          make(map[string]*FakeDocument),
		Messages:           make(map[string][]*workspace.Message),
		annotations:        make(map[string]*annotation),
		sectionAnnotations: make(map[string]string),
		denied:             make(map[string]bool),
		failures:           make(map[Op][]error),
		calls:              make([]Call, 0),
		userName:           "Fake User",
		ackBody:            true,
		ids:                docid.Random{},
		logger:             hclog.NewNullLogger(),
		now:                time.Now,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.userID == "" {
		f.userID = f.ids.Next(docid.KindUser)
	}
	f.logger = f.logger.Named("fake-quip")
	return f
}

// ===================================================================
// Test Helpers
// ===================================================================

// WithDocument adds a document with the given id and HTML body. Elements that
// the service would address but that lack an id are given one.
func (f *FakeService) WithDocument(id, title, body string) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now().UnixMicro()
	doc := &FakeDocument{
		ID:          id,
		Title:       title,
		Type:        workspace.TypeDocument,
		CreatedUsec: now,
		UpdatedUsec: now,
		body:        htmlutil.ParseBody(body),
	}
	f.assignMissingIDs(doc.body)
	f.Documents[id] = doc
	return f
}

// Deny makes every operation on document id fail with docerr.ErrUnauthorized.
func (f *FakeService) Deny(id string) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied[id] = true
	return f
}

// FailNext makes the next call of op return err without touching any state.
func (f *FakeService) FailNext(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], err)
}

// Calls returns a copy of the call log.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times op was called.
func (f *FakeService) CallCount(op Op) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = f.calls[:0]
}

// BodyOf returns the current HTML of document id, or "" if it does not exist.
func (f *FakeService) BodyOf(id string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	doc, ok := f.Documents[id]
	if !ok {
		return ""
	}
	return doc.HTML()
}

// MessagesOf returns the messages posted to document id.
func (f *FakeService) MessagesOf(id string) []*workspace.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*workspace.Message, len(f.Messages[id]))
	copy(out, f.Messages[id])
	return out
}

// ===================================================================
// Internal helpers (callers hold f.mu)
// ===================================================================

// begin records the call and returns any queued failure for op, a context
// error, or the document lookup error.
func (f *FakeService) begin(ctx context.Context, op Op, documentID, detail string) (*FakeDocument, error) {
	f.calls = append(f.calls, Call{Op: op, DocumentID: documentID, Detail: detail, At: f.now()})
	f.logger.Debug("call", "op", op, "document_id", documentID, "detail", detail)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if queued := f.failures[op]; len(queued) > 0 {
		f.failures[op] = queued[1:]
		return nil, queued[0]
	}
	if op == OpCreate {
		return nil, nil
	}
	if f.denied[documentID] {
		return nil, fmt.Errorf("document %q: %w", documentID, docerr.ErrUnauthorized)
	}
	doc, ok := f.Documents[documentID]
	if !ok {
		return nil, docerr.DocumentNotFound(documentID)
	}
	return doc, nil
}

func (f *FakeService) reject(op string, message string) error {
	return &docerr.RemoteRejectedError{
		Op:         op,
		StatusCode: 400,
		Code:       400,
		Message:    message,
	}
}

func (f *FakeService) touch(doc *FakeDocument) {
	doc.UpdatedUsec = f.now().UnixMicro()
}

// toHTML converts content to sanitised HTML.
func (f *FakeService) toHTML(content string, format workspace.Format) (string, error) {
	if format == workspace.FormatMarkdown {
		var buf bytes.Buffer
		if err := f.markdown.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("error converting markdown: %w", err)
		}
		content = buf.String()
	}
	return f.policy.Sanitize(content), nil
}
