// Package validator performs static checks on documents before evaluation.
package validator
