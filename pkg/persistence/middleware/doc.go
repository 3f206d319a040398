// Package middleware wraps document stores with encryption at rest and
// redaction of sensitive module data.
package middleware
