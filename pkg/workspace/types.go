package workspace

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/quipdoc/pkg/section"
)

// Format is the markup language of submitted content.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "html" or "markdown" in any case. Empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strcase.ToSnake(s)); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Frame is the visual style of a posted message.
type Frame string

const (
	FrameNone   Frame = ""
	FrameBubble Frame = "bubble"
	FrameCard   Frame = "card"
	FrameLine   Frame = "line"
)

// ParseFrame accepts a frame name in any case. Empty means no frame.
func ParseFrame(s string) (Frame, error) {
	switch f := Frame(strcase.ToSnake(s)); f {
	case FrameNone, FrameBubble, FrameCard, FrameLine:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frame %q", s)
	}
}

// DocumentType distinguishes plain documents from spreadsheets.
type DocumentType string

const (
	TypeDocument    DocumentType = "document"
	TypeSpreadsheet DocumentType = "spreadsheet"
)

// LocationEdit is a fragment edit anchored by a placement.
type LocationEdit struct {
	DocumentID string
	Content    string
	Format     Format
	Placement  section.Placement
}

// CellUpdate replaces the text of the cell at (Row, Column) of a table's
// body rows.
type CellUpdate struct {
	DocumentID string
	TableID    string
	Row        int
	Column     int
	Value      string
}

// RowInsert adds a body row. Values has one entry per column.
type RowInsert struct {
	DocumentID string
	TableID    string

	// BeforeRow is the index the new row will occupy. Nil appends.
	BeforeRow *int

	Values []string
}

// RowRemove deletes the body row at Row.
type RowRemove struct {
	DocumentID string
	TableID    string
	Row        int
}

// Ack is the service's view of a table after a table-scoped mutation.
type Ack struct {
	RowCount    int
	ColumnCount int

	// Body is the full document HTML after the mutation, when the service
	// returned it. Empty otherwise.
	Body string
}

// MessageRequest posts a comment. At most one of SectionID and AnnotationID
// may be set.
type MessageRequest struct {
	DocumentID   string
	Content      string
	Frame        Frame
	SectionID    string
	AnnotationID string
	Silent       bool
}

// Validate checks the request fields.
func (r *MessageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DocumentID, validation.Required),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Frame, validation.In(FrameNone, FrameBubble, FrameCard, FrameLine)),
	)
}

// Message is a posted comment as recorded by the service.
type Message struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`

	// AnnotationID identifies the comment thread the message belongs to.
	// Set when the message was anchored to a section or posted into an
	// existing thread.
	AnnotationID string `json:"annotation_id,omitempty"`

	HighlightSectionIDs []string `json:"highlight_section_ids,omitempty"`

	CreatedUsec int64 `json:"created_usec"`
	Visible     bool  `json:"visible"`
}

// CreatedAt converts CreatedUsec to a time.
func (m *Message) CreatedAt() time.Time {
	return time.UnixMicro(m.CreatedUsec)
}

// CreateRequest describes a new document.
type CreateRequest struct {
	Title     string
	Content   string
	Format    Format
	Type      DocumentType
	MemberIDs []string
}

// Validate checks the request fields.
func (r *CreateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Format, validation.In(FormatHTML, FormatMarkdown)),
		validation.Field(&r.Type, validation.In(TypeDocument, TypeSpreadsheet)),
		validation.Field(&r.Content, validation.When(r.Title == "", validation.Required.Error("content is required when no title is given"))),
	)
}

// DocumentInfo describes a document returned by the service.
type DocumentInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        DocumentType `json:"type"`
	Link        string       `json:"link"`
	CreatedUsec int64        `json:"created_usec"`
	UpdatedUsec int64        `json:"updated_usec"`

	// HTML is the body of the new document.
	HTML string `json:"-"`
}
