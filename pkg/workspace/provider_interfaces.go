package workspace

import (
	"context"
)

// ===================================================================
// COLLABORATOR INTERFACES
// ===================================================================
//
// This file defines the remote operations the document model depends on.
// The editor and table packages only ever talk to these interfaces; the
// adapters under adapters/ provide the concrete implementations:
//
//   - adapters/api  - the Quip REST API
//   - adapters/mock - an in-memory service for tests
//
// Required by editor.Document:
// 1. BodyFetcher - read the current HTML body
// 2. LocationEditor - section-anchored fragment edits
// 3. TableEditor - table-scoped cell and row operations
// 4. MessagePoster - comments and annotation threads
//
// Optional:
// 5. DocumentCreator - create new documents and spreadsheets

// ===================================================================
// INTERFACE: BodyFetcher
// ===================================================================
// BodyFetcher retrieves the HTML body of a document.
type BodyFetcher interface {
	// FetchBody returns the current HTML of the document.
	// Errors: docerr.ErrNotFound, docerr.ErrUnauthorized, or a transport error.
	FetchBody(ctx context.Context, documentID string) (string, error)
}

// ===================================================================
// INTERFACE: LocationEditor
// ===================================================================
// LocationEditor submits an HTML or Markdown fragment together with a
// placement directive.
type LocationEditor interface {
	// SubmitLocationEdit applies the edit and returns the full HTML body the
	// service produced. Rejections are reported as *docerr.RemoteRejectedError.
	SubmitLocationEdit(ctx context.Context, edit *LocationEdit) (string, error)
}

// ===================================================================
// INTERFACE: TableEditor
// ===================================================================
// TableEditor performs table-scoped mutations addressed by position.
//
// Every method returns an Ack describing the table after the mutation. The
// Ack is authoritative: callers reconcile their local grid to it.
type TableEditor interface {
	// SubmitCellUpdate replaces the text of one cell.
	SubmitCellUpdate(ctx context.Context, update *CellUpdate) (*Ack, error)

	// SubmitRowInsert inserts a row before BeforeRow, or at the end when
	// BeforeRow is nil.
	SubmitRowInsert(ctx context.Context, insert *RowInsert) (*Ack, error)

	// SubmitRowRemove deletes one row.
	SubmitRowRemove(ctx context.Context, remove *RowRemove) (*Ack, error)
}

// ===================================================================
// INTERFACE: MessagePoster
// ===================================================================
// MessagePoster posts a comment to a document's conversation.
type MessagePoster interface {
	// SubmitMessage posts the message and returns it as recorded by the
	// service, including any annotation id the service assigned.
	SubmitMessage(ctx context.Context, req *MessageRequest) (*Message, error)
}

// ===================================================================
// OPTIONAL INTERFACE: DocumentCreator
// ===================================================================
// DocumentCreator creates new documents.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, req *CreateRequest) (*DocumentInfo, error)
}

// ===================================================================
// COMPOSITE INTERFACES
// ===================================================================

// Collaborator is everything an editor.Document needs from the service.
type Collaborator interface {
	BodyFetcher
	LocationEditor
	TableEditor
	MessagePoster
}

// Service is a Collaborator that can also create documents. Both adapters
// implement it.
type Service interface {
	Collaborator
	DocumentCreator
}
