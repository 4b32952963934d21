// Package api handles incoming HTTP requests for the generation endpoints:
// decoding and validating bodies, calling the recruiting service, and
// mapping failures to categorized JSON error responses.
package api
