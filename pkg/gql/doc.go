// Package gql holds the GraphQL-over-HTTP JSON envelope used between the
// dialog and the contact method API, and a small client for it.
//
// Only the envelope is modelled: documents are sent as strings and the
// server side dispatches on operationName. Errors that carry
// extensions.isFieldError and extensions.fieldName are attributed to a form
// field; see [Errors.Validation].
package gql
