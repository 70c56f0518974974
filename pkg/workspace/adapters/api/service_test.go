package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
	"github.com/hashicorp-forge/quipdoc/pkg/editor"
	"github.com/hashicorp-forge/quipdoc/pkg/fragment"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace/adapters/mock"
)

// quipHandler serves the subset of the Quip REST API used by Provider from an
// in-memory fake, so the whole stack can run over real HTTP.
func quipHandler(fake *mock.FakeService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /1/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		body, err := fake.FetchBody(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeThread(w, workspace.DocumentInfo{ID: id}, body)
	})

	mux.HandleFunc("POST /1/threads/edit-document", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PostFormValue("location"))
		if err != nil {
			writeServiceError(w, &docerr.RemoteRejectedError{Code: 400, Message: "invalid location"})
			return
		}
		placement, err := section.NewPlacement(section.Location(code), r.PostFormValue("section_id"))
		if err != nil {
			writeServiceError(w, &docerr.RemoteRejectedError{Code: 400, Message: err.Error()})
			return
		}
		id := r.PostFormValue("thread_id")
		body, err := fake.SubmitLocationEdit(r.Context(), &workspace.LocationEdit{
			DocumentID: id,
			Content:    r.PostFormValue("content"),
			Format:     workspace.Format(r.PostFormValue("format")),
			Placement:  placement,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeThread(w, workspace.DocumentInfo{ID: id}, body)
	})

	mux.HandleFunc("POST /1/threads/new-document", func(w http.ResponseWriter, r *http.Request) {
		var members []string
		if m := r.PostFormValue("member_ids"); m != "" {
			members = strings.Split(m, ",")
		}
		info, err := fake.CreateDocument(r.Context(), &workspace.CreateRequest{
			Title:     r.PostFormValue("title"),
			Content:   r.PostFormValue("content"),
			Format:    workspace.Format(r.PostFormValue("format")),
			Type:      workspace.DocumentType(r.PostFormValue("type")),
			MemberIDs: members,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeThread(w, *info, info.HTML)
	})

	mux.HandleFunc("POST /1/messages/new", func(w http.ResponseWriter, r *http.Request) {
		msg, err := fake.SubmitMessage(r.Context(), &workspace.MessageRequest{
			DocumentID:   r.PostFormValue("thread_id"),
			Content:      r.PostFormValue("content"),
			Frame:        workspace.Frame(r.PostFormValue("frame")),
			SectionID:    r.PostFormValue("section_id"),
			AnnotationID: r.PostFormValue("annotation_id"),
			Silent:       r.PostFormValue("silent") == "true",
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := messageResponse{
			ID:          msg.ID,
			AuthorID:    msg.AuthorID,
			AuthorName:  msg.AuthorName,
			Text:        msg.Text,
			CreatedUsec: msg.CreatedUsec,
			Visible:     msg.Visible,
		}
		if msg.AnnotationID != "" {
			resp.Annotation = &annotationRef{ID: msg.AnnotationID, HighlightSectionIDs: msg.HighlightSectionIDs}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func writeThread(w http.ResponseWriter, info workspace.DocumentInfo, body string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(threadResponse{Thread: info, HTML: body})
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := apiError{ErrorDescription: err.Error()}

	var rejected *docerr.RemoteRejectedError
	switch {
	case errors.Is(err, docerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, docerr.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.As(err, &rejected):
		status = http.StatusBadRequest
		resp.ErrorCode = rejected.Code
		resp.ErrorDescription = rejected.Message
	}
	resp.Error = http.StatusText(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func newServiceFixture(t *testing.T) (*mock.FakeService, *Provider) {
	t.Helper()
	fake := mock.NewFakeService(mock.WithIDGenerator(docid.NewSequence()))
	srv := httptest.NewServer(quipHandler(fake))
	t.Cleanup(srv.Close)

	p, err := NewProvider(&Config{
		BaseURL:     srv.URL,
		AccessToken: "test-token",
		Timeout:     5 * time.Second,
		RetryDelay:  time.Millisecond,
	}, hclog.NewNullLogger())
	require.NoError(t, err)
	return fake, p
}

func TestService_TableRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake, p := newServiceFixture(t)

	content, err := fragment.BuildTableWithHeaders(
		[]string{"列A🚀", "列B💫"},
		[][]string{{"A1", "B1"}, {"A2", "B2"}},
	)
	require.NoError(t, err)

	doc, err := editor.Create(ctx, p, &workspace.CreateRequest{
		Title:   "Table over HTTP",
		Content: content,
		Format:  workspace.FormatHTML,
		Type:    workspace.TypeDocument,
	})
	require.NoError(t, err)

	tables, err := doc.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	tbl := tables[0]
	assert.Equal(t, 2, tbl.RowCount())

	h, err := tbl.ColumnHeader(1)
	require.NoError(t, err)
	assert.Equal(t, "列B💫", h)

	require.NoError(t, tbl.UpdateCellValue(ctx, 1, 1, "x & <y>"))
	require.NoError(t, tbl.InsertRow(ctx, 0, []string{"top", "row"}))
	require.NoError(t, tbl.AddRowValues(ctx, []string{"last", "row"}))
	require.NoError(t, tbl.RemoveRow(ctx, 1))

	want := [][]string{{"top", "row"}, {"A2", "x & <y>"}, {"last", "row"}}
	assert.Equal(t, want, tbl.Values())

	fresh, err := doc.TableByID(ctx, tbl.ID())
	require.NoError(t, err)
	assert.Equal(t, want, fresh.Values())
	assert.Equal(t, 4, fake.CallCount(mock.OpLocationEdit), "every table mutation is one edit-document call")
}

func TestService_CellValuesSurviveRoundTrip(t *testing.T) {
	values := []struct {
		name  string
		value string
	}{
		{"padded", "  pad  "},
		{"carriage return", "a\r\nb"},
		{"tabs and newlines", "\tx\n\ny\t"},
		{"markup", "<b>not bold</b> & co"},
		{"empty", ""},
	}

	for _, tt := range values {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			_, p := newServiceFixture(t)

			content, err := fragment.BuildTableWithHeaders([]string{"A", "B"}, [][]string{{"1", "2"}})
			require.NoError(t, err)
			doc, err := editor.Create(ctx, p, &workspace.CreateRequest{Title: "Cells", Content: content, Format: workspace.FormatHTML})
			require.NoError(t, err)

			tables, err := doc.Tables(ctx)
			require.NoError(t, err)
			require.Len(t, tables, 1)
			tbl := tables[0]

			require.NoError(t, tbl.UpdateCellValue(ctx, 0, 1, tt.value))
			v, err := tbl.CellValue(0, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v, "local value after update")

			fresh, err := doc.TableByID(ctx, tbl.ID())
			require.NoError(t, err)
			v, err = fresh.CellValue(0, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v, "value read back from the service")
		})
	}
}

func TestService_InsertIntoHeaderOnlyTable(t *testing.T) {
	ctx := context.Background()
	_, p := newServiceFixture(t)

	content, err := fragment.BuildTableWithHeaders([]string{"Name", "Owner"}, nil)
	require.NoError(t, err)
	doc, err := editor.Create(ctx, p, &workspace.CreateRequest{Title: "Empty", Content: content, Format: workspace.FormatHTML})
	require.NoError(t, err)

	tables, err := doc.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	tbl := tables[0]
	require.Zero(t, tbl.RowCount())

	require.NoError(t, tbl.AddRowValues(ctx, []string{"alpha", "ana"}))
	require.NoError(t, tbl.InsertRow(ctx, 0, []string{"first", "fay"}))
	want := [][]string{{"first", "fay"}, {"alpha", "ana"}}
	assert.Equal(t, want, tbl.Values())

	fresh, err := doc.TableByID(ctx, tbl.ID())
	require.NoError(t, err)
	assert.Equal(t, want, fresh.Values())
	h, err := fresh.ColumnHeader(0)
	require.NoError(t, err)
	assert.Equal(t, "Name", h)
}

func TestService_LocationEditsAndComments(t *testing.T) {
	ctx := context.Background()
	fake, p := newServiceFixture(t)
	fake.WithDocument("doc1", "Doc", `<h1 id="s0">Title</h1><p id="s1">one</p>`)

	doc := editor.New("doc1", p)
	require.NoError(t, doc.InsertAfter(ctx, "s1", "<p>two</p>", workspace.FormatHTML))
	require.NoError(t, doc.Append(ctx, "**three**", workspace.FormatMarkdown))
	require.NoError(t, doc.DeleteSection(ctx, "s0"))

	sections, err := doc.Sections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "s1", sections[0].ID)
	assert.Equal(t, "two", sections[1].Text)
	assert.Equal(t, "three", sections[2].Text)

	first, err := doc.AnnotatedComment(ctx, "on one", "s1", "")
	require.NoError(t, err)
	require.NotEmpty(t, first.AnnotationID)
	assert.Equal(t, []string{"s1"}, first.HighlightSectionIDs)

	second, err := doc.AnnotatedComment(ctx, "again", "s1", "")
	require.NoError(t, err)
	assert.Equal(t, first.AnnotationID, second.AnnotationID)

	reply, err := doc.AnnotatedComment(ctx, "reply", "", first.AnnotationID, editor.Silent())
	require.NoError(t, err)
	assert.Equal(t, first.AnnotationID, reply.AnnotationID)
	assert.Len(t, fake.Thread(first.AnnotationID), 3)

	_, err = doc.AnnotatedComment(ctx, "bad", "", "A-missing")
	assert.ErrorIs(t, err, docerr.ErrRemoteRejected)
}

func TestService_Failures(t *testing.T) {
	ctx := context.Background()
	fake, p := newServiceFixture(t)
	fake.WithDocument("doc1", "Doc", `<table id="t"><tbody><tr><td>only</td></tr></tbody></table>`)

	_, err := editor.New("missing", p).Sections(ctx)
	assert.ErrorIs(t, err, docerr.ErrNotFound)

	fake.Deny("doc1")
	_, err = editor.New("doc1", p).Sections(ctx)
	assert.ErrorIs(t, err, docerr.ErrUnauthorized)
}

func TestService_LastRowProtectedRemotely(t *testing.T) {
	ctx := context.Background()
	fake, p := newServiceFixture(t)
	fake.WithDocument("doc1", "Doc", `<table id="t"><tbody><tr id="r1"><td>only</td></tr></tbody></table>`)

	// Bypass the local table check to see the service refuse as well.
	_, err := p.SubmitLocationEdit(ctx, &workspace.LocationEdit{DocumentID: "doc1", Placement: section.Deleting("r1")})
	assert.ErrorIs(t, err, docerr.ErrRemoteRejected)

	_, err = p.SubmitRowRemove(ctx, &workspace.RowRemove{DocumentID: "doc1", TableID: "t", Row: 0})
	assert.ErrorIs(t, err, docerr.ErrLastRowProtected)
	assert.Equal(t, 1, fake.CallCount(mock.OpLocationEdit))
}
