// Package api provides a workspace.Service backed by the Quip Automation REST
// API.
//
// # Overview
//
// Provider translates the collaborator interfaces into the handful of
// endpoints the document model needs:
//
//	GET  /1/threads/{id}            FetchBody
//	POST /1/threads/edit-document   SubmitLocationEdit and every table mutation
//	POST /1/messages/new            SubmitMessage
//	POST /1/threads/new-document    CreateDocument
//
// The service has no table-scoped endpoint. Table mutations read the current
// body, locate the addressed cell or row by its element id, and issue a
// section-anchored edit-document request:
//
//	cell update   REPLACE_SECTION on the cell id with the escaped value
//	row insert    AFTER_SECTION on the preceding row (BEFORE_SECTION at index 0)
//	row remove    DELETE_SECTION on the row id
//
// The body returned by edit-document is handed back in the workspace.Ack so
// the table model can resynchronise without another round trip.
//
// # Configuration Example
//
//	quip {
//	  base_url     = "https://platform.quip.com"
//	  access_token = "..."
//	  timeout      = "30s"
//	  max_retries  = 3
//	}
//
// # Errors
//
// Responses are classified into the docerr taxonomy: 404 becomes a
// docerr.NotFoundError, 401 and 403 wrap docerr.ErrUnauthorized, other 4xx
// responses become a *docerr.RemoteRejectedError carrying the upstream
// error_code and error_description, and network failures or exhausted 5xx
// retries become a *docerr.TransportError.
//
// Only GET requests are retried. Edits are never replayed because the service
// does not make them idempotent.
package api
